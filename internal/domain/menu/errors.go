// internal/domain/menu/errors.go
package menu

import "strings"

// ConfigIntegrityError is returned at startup when the menu definition does not
// agree with the zone registry. It lists every problem found, not just the first.
type ConfigIntegrityError struct {
	Problems []string
}

func (e *ConfigIntegrityError) Error() string {
	return "menu config integrity: " + strings.Join(e.Problems, "; ")
}
