// internal/domain/menu/screen.go
package menu

import (
	"strconv"
	"strings"
)

// Screen is a menu page: a title line followed by numbered options.
type Screen struct {
	Title   string
	Options []string
}

// Render formats the screen the way feature phones display it.
func (s Screen) Render() string {
	var b strings.Builder
	b.WriteString(s.Title)
	for i, opt := range s.Options {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(opt)
	}
	return b.String()
}

// Flow is one of the top-level menu trees.
type Flow string

const (
	FlowReport   Flow = "report"
	FlowForecast Flow = "forecast"
)

var rootOptions = []struct {
	flow  Flow
	label string
}{
	{FlowReport, "Report Sign (Asili Smart)"},
	{FlowForecast, "Get Weather Forecast"},
}

// RootScreen is shown on an empty path.
func RootScreen() Screen {
	s := Screen{Title: "Welcome to GeoGuard Kenya"}
	for _, o := range rootOptions {
		s.Options = append(s.Options, o.label)
	}
	return s
}

// ParseFlow maps the first token of a session to its flow.
func ParseFlow(token string) (Flow, bool) {
	for i, o := range rootOptions {
		if token == strconv.Itoa(i+1) {
			return o.flow, true
		}
	}
	return "", false
}
