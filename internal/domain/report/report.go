// internal/domain/report/report.go
package report

import (
	"time"

	"geoguard/internal/domain/zone"

	"github.com/google/uuid"
)

// Report is a citizen observation of a traditional warning sign ("Asili Smart" report).
type Report struct {
	ID          uuid.UUID
	Sign        string
	Region      string
	Hazard      zone.Hazard
	ZoneID      zone.ID
	Sender      string
	SubmittedAt time.Time
}
