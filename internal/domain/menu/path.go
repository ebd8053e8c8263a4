// internal/domain/menu/path.go
package menu

import "strings"

// Delimiter separates levels in the accumulated USSD text, e.g. "2*1*3".
const Delimiter = "*"

// Path is the full accumulated session input. An empty Path is the start of a session.
type Path []string

// ParsePath splits raw gateway text into tokens. Empty text yields an empty Path;
// empty segments ("2**1") are kept so they fail validation at their level.
func ParsePath(raw string) Path {
	if raw == "" {
		return Path{}
	}
	return Path(strings.Split(raw, Delimiter))
}

// Head returns the first token and the remaining path.
func (p Path) Head() (string, Path) {
	if len(p) == 0 {
		return "", Path{}
	}
	return p[0], p[1:]
}

// String joins the path back into wire form.
func (p Path) String() string { return strings.Join(p, Delimiter) }
