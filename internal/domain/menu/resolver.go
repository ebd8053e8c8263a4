// internal/domain/menu/resolver.go
package menu

import (
	"fmt"
	"strconv"

	"geoguard/internal/domain/zone"
)

// ResultKind tells the dispatcher what to do with a resolved path.
type ResultKind int

const (
	ResultScreen ResultKind = iota
	ResultForecast
	ResultReport
	ResultInvalidInput
	ResultInvalidSelection
)

func (k ResultKind) String() string {
	switch k {
	case ResultScreen:
		return "screen"
	case ResultForecast:
		return "forecast"
	case ResultReport:
		return "report"
	case ResultInvalidInput:
		return "invalid_input"
	case ResultInvalidSelection:
		return "invalid_selection"
	default:
		return "unknown"
	}
}

// Terminal reports whether the result ends the session.
func (k ResultKind) Terminal() bool { return k != ResultScreen }

// ForecastLeaf is a resolved forecast selection.
type ForecastLeaf struct {
	Region string
	ZoneID zone.ID
	Hazard zone.Hazard
}

// ReportLeaf is a resolved sign report.
type ReportLeaf struct {
	Sign   string
	Hazard zone.Hazard
	Region string
	ZoneID zone.ID
}

// Result is exactly one of a screen to render or a terminal outcome.
type Result struct {
	Kind     ResultKind
	Screen   Screen
	Forecast ForecastLeaf
	Report   ReportLeaf
}

type node struct {
	title    string
	options  []option
	terminal func(consumed Path) Result
}

type option struct {
	label string
	next  *node
}

func (n *node) child(token string) (*node, bool) {
	i, err := strconv.Atoi(token)
	if err != nil || strconv.Itoa(i) != token || i < 1 || i > len(n.options) {
		return nil, false
	}
	return n.options[i-1].next, true
}

func (n *node) screen() Screen {
	s := Screen{Title: n.title, Options: make([]string, len(n.options))}
	for i, o := range n.options {
		s.Options[i] = o.label
	}
	return s
}

// Resolver holds the immutable menu trees. It is safe for concurrent use.
type Resolver struct {
	roots map[Flow]*node
}

type forecastKey struct{ region, zone string }

// NewResolver builds both trees from def and checks every zone reference against reg.
func NewResolver(def Definition, reg *zone.Registry) (*Resolver, error) {
	var problems []string
	if reg == nil {
		return nil, &ConfigIntegrityError{Problems: []string{"zone registry is nil"}}
	}

	forecastRoot, p := buildForecast(def.Forecast, reg)
	problems = append(problems, p...)
	reportRoot, p := buildReport(def.Report, reg)
	problems = append(problems, p...)

	if len(problems) > 0 {
		return nil, &ConfigIntegrityError{Problems: problems}
	}
	return &Resolver{roots: map[Flow]*node{
		FlowForecast: forecastRoot,
		FlowReport:   reportRoot,
	}}, nil
}

func buildForecast(def ForecastDefinition, reg *zone.Registry) (*node, []string) {
	var problems []string
	if len(def.Regions) == 0 {
		problems = append(problems, "forecast: no regions defined")
	}

	table := make(map[forecastKey]ForecastLeaf)
	terminal := &node{}
	terminal.terminal = func(consumed Path) Result {
		if len(consumed) != 2 {
			return Result{Kind: ResultInvalidSelection}
		}
		leaf, ok := table[forecastKey{consumed[0], consumed[1]}]
		if !ok {
			return Result{Kind: ResultInvalidSelection}
		}
		return Result{Kind: ResultForecast, Forecast: leaf}
	}

	root := &node{title: titleOr(def.Title, "Select Location for Forecast:")}
	for ri, region := range def.Regions {
		regionToken := strconv.Itoa(ri + 1)
		if region.Label == "" {
			problems = append(problems, fmt.Sprintf("forecast region %s: empty label", regionToken))
		}
		if region.Hazard != "" && !region.Hazard.Valid() {
			problems = append(problems, fmt.Sprintf("forecast region %q: unknown hazard %q", region.Label, region.Hazard))
		}
		if len(region.Zones) == 0 {
			problems = append(problems, fmt.Sprintf("forecast region %q: no zones", region.Label))
		}

		sub := &node{title: titleOr(region.Title, "Select Zone in "+region.Label+":")}
		seen := make(map[zone.ID]bool)
		for _, ref := range region.Zones {
			z, ok := reg.Lookup(ref.ID)
			if !ok {
				problems = append(problems, fmt.Sprintf("forecast region %q: unknown zone %q", region.Label, ref.ID))
				continue
			}
			if seen[ref.ID] {
				problems = append(problems, fmt.Sprintf("forecast region %q: zone %q listed twice", region.Label, ref.ID))
				continue
			}
			seen[ref.ID] = true

			hazard := region.Hazard
			if hazard == "" {
				hazard = z.PrimaryHazard()
			}
			table[forecastKey{regionToken, strconv.Itoa(len(sub.options) + 1)}] = ForecastLeaf{
				Region: region.Label,
				ZoneID: z.ID,
				Hazard: hazard,
			}
			sub.options = append(sub.options, option{label: titleOr(ref.Label, z.DisplayName), next: terminal})
		}
		root.options = append(root.options, option{label: region.Label, next: sub})
	}
	return root, problems
}

func buildReport(def ReportDefinition, reg *zone.Registry) (*node, []string) {
	var problems []string
	if len(def.Signs) == 0 {
		problems = append(problems, "report: no signs defined")
	}
	if len(def.Regions) == 0 {
		problems = append(problems, "report: no regions defined")
	}

	signs := make(map[string]SignDefinition)
	regions := make(map[string]ReportRegionDefinition)
	terminal := &node{}
	terminal.terminal = func(consumed Path) Result {
		if len(consumed) != 2 {
			return Result{Kind: ResultInvalidSelection}
		}
		s, okSign := signs[consumed[0]]
		r, okRegion := regions[consumed[1]]
		if !okSign || !okRegion {
			return Result{Kind: ResultInvalidSelection}
		}
		return Result{Kind: ResultReport, Report: ReportLeaf{
			Sign:   s.Name,
			Hazard: s.Hazard,
			Region: r.Name,
			ZoneID: r.Zone,
		}}
	}

	regionScreen := &node{title: titleOr(def.RegionTitle, "Select Your Region:")}
	for i, r := range def.Regions {
		if r.Label == "" || r.Name == "" {
			problems = append(problems, fmt.Sprintf("report region %d: empty label or name", i+1))
		}
		if _, ok := reg.Lookup(r.Zone); !ok {
			problems = append(problems, fmt.Sprintf("report region %q: unknown zone %q", r.Label, r.Zone))
			continue
		}
		regions[strconv.Itoa(i+1)] = r
		regionScreen.options = append(regionScreen.options, option{label: r.Label, next: terminal})
	}

	root := &node{title: titleOr(def.SignTitle, "Select Observed Sign:")}
	for i, s := range def.Signs {
		if s.Label == "" || s.Name == "" {
			problems = append(problems, fmt.Sprintf("report sign %d: empty label or name", i+1))
		}
		if !s.Hazard.Valid() {
			problems = append(problems, fmt.Sprintf("report sign %q: unknown hazard %q", s.Label, s.Hazard))
		}
		signs[strconv.Itoa(i+1)] = s
		root.options = append(root.options, option{label: s.Label, next: regionScreen})
	}
	return root, problems
}

func titleOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Resolve walks path from the root of flow. Tokens after a terminal node are ignored.
// Resolve never panics; any input yields exactly one Result.
func (r *Resolver) Resolve(flow Flow, path Path) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{Kind: ResultInvalidInput}
		}
	}()

	n, ok := r.roots[flow]
	if !ok {
		return Result{Kind: ResultInvalidInput}
	}
	for consumed := 0; ; consumed++ {
		if n.terminal != nil {
			return n.terminal(path[:consumed])
		}
		if consumed == len(path) {
			return Result{Kind: ResultScreen, Screen: n.screen()}
		}
		next, ok := n.child(path[consumed])
		if !ok {
			return Result{Kind: ResultInvalidInput}
		}
		n = next
	}
}

// ZoneReferences returns every zone id reachable from a terminal of either tree, in walk order.
func (r *Resolver) ZoneReferences() []zone.ID {
	var ids []zone.ID
	seen := make(map[zone.ID]bool)

	var walk func(n *node, path Path)
	walk = func(n *node, path Path) {
		if n.terminal != nil {
			res := n.terminal(path)
			id := res.Forecast.ZoneID
			if res.Kind == ResultReport {
				id = res.Report.ZoneID
			}
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
			return
		}
		for i, o := range n.options {
			next := append(append(Path{}, path...), strconv.Itoa(i+1))
			walk(o.next, next)
		}
	}
	for _, flow := range []Flow{FlowReport, FlowForecast} {
		walk(r.roots[flow], Path{})
	}
	return ids
}
