// internal/domain/report/repository.go
package report

import "context"

// Repository persists submitted reports.
type Repository interface {
	Create(ctx context.Context, r *Report) error
}
