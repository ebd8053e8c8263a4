// internal/app/session_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geoguard/internal/domain/menu"
	"geoguard/internal/domain/report"
	"geoguard/internal/domain/risk"
	"geoguard/internal/domain/zone"
	"geoguard/internal/infra/observability"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// USSD protocol markers. Every reply starts with exactly one of them.
const (
	MarkerContinue = "CON "
	MarkerEnd      = "END "
)

const (
	invalidInputText     = MarkerEnd + "Invalid input. Please dial again."
	invalidSelectionText = MarkerEnd + "Invalid location selected."
	reportStoreTimeout   = 3 * time.Second
)

// SessionRequest is one gateway callback. Text holds the whole accumulated input.
type SessionRequest struct {
	SessionID   string
	ServiceCode string
	PhoneNumber string
	Text        string
}

// SessionService answers USSD callbacks. It keeps no per-session state.
type SessionService struct {
	resolver  *menu.Resolver
	registry  *zone.Registry
	forecasts *ForecastService
	reports   report.Repository // nil keeps reports acknowledge-only
	clock     clockwork.Clock
	location  *time.Location
	metrics   *observability.Metrics
	log       *logrus.Entry
}

func NewSessionService(
	resolver *menu.Resolver,
	registry *zone.Registry,
	forecasts *ForecastService,
	reports report.Repository,
	clock clockwork.Clock,
	location *time.Location,
	metrics *observability.Metrics,
	log *logrus.Entry,
) *SessionService {
	if location == nil {
		location = time.UTC
	}
	return &SessionService{
		resolver:  resolver,
		registry:  registry,
		forecasts: forecasts,
		reports:   reports,
		clock:     clock,
		location:  location,
		metrics:   metrics,
		log:       log,
	}
}

// Handle maps a callback to its reply. It never fails; every problem becomes an END message.
func (s *SessionService) Handle(ctx context.Context, req SessionRequest) (reply string) {
	logCtx := s.log.WithFields(logrus.Fields{
		"session_id": req.SessionID,
		"phone":      req.PhoneNumber,
		"text":       req.Text,
	})
	defer func() {
		if rec := recover(); rec != nil {
			logCtx.WithField("panic", rec).Error("Recovered while handling USSD request")
			reply = invalidInputText
		}
	}()

	path := menu.ParsePath(req.Text)
	head, rest := path.Head()
	if len(path) == 0 {
		s.count("screen")
		return MarkerContinue + menu.RootScreen().Render()
	}

	flow, ok := menu.ParseFlow(head)
	if !ok {
		s.count(menu.ResultInvalidInput.String())
		logCtx.Debug("Unknown top-level option")
		return invalidInputText
	}

	res := s.resolver.Resolve(flow, rest)
	s.count(res.Kind.String())
	switch res.Kind {
	case menu.ResultScreen:
		return MarkerContinue + res.Screen.Render()
	case menu.ResultForecast:
		return s.forecastReply(ctx, res.Forecast, logCtx)
	case menu.ResultReport:
		return s.reportReply(ctx, res.Report, req, logCtx)
	case menu.ResultInvalidSelection:
		logCtx.Warn("Menu leaf did not resolve to a selection")
		return invalidSelectionText
	default:
		return invalidInputText
	}
}

func (s *SessionService) forecastReply(ctx context.Context, leaf menu.ForecastLeaf, logCtx *logrus.Entry) string {
	z, ok := s.registry.Lookup(leaf.ZoneID)
	if !ok {
		logCtx.WithField("zone", leaf.ZoneID).Error("Forecast leaf references unknown zone")
		return invalidSelectionText
	}

	fc, err := s.forecasts.Lookup(ctx, z, leaf.Hazard)
	if err != nil {
		return MarkerEnd + fmt.Sprintf("No live data yet for %s. Please try again later.", z.DisplayName)
	}
	return MarkerEnd + FormatForecast(fc, s.location)
}

// FormatForecast renders the USSD forecast body (without the protocol marker).
func FormatForecast(fc *Forecast, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Forecast for %s (%s):\n", fc.Zone.DisplayName, fc.Observation.ObservedAt.In(loc).Format("03:04PM"))
	fmt.Fprintf(&b, "Temp: %sC\n", risk.FormatNumber(fc.Observation.TemperatureC))
	fmt.Fprintf(&b, "Rain: %smm\n", risk.FormatNumber(fc.Observation.Rainfall1hMm))
	fmt.Fprintf(&b, "Status: %s", fc.Classification.Label.Text())
	if fc.Classification.Label.IsAlert() {
		b.WriteString("\n")
		b.WriteString(fc.Classification.Reason)
	}
	return b.String()
}

func (s *SessionService) reportReply(ctx context.Context, leaf menu.ReportLeaf, req SessionRequest, logCtx *logrus.Entry) string {
	ack := MarkerEnd + fmt.Sprintf("Thank you. We have received your report of '%s' in %s.\nValidation via satellite is in progress.", leaf.Sign, leaf.Region)
	if s.reports == nil {
		return ack
	}

	rep := &report.Report{
		Sign:        leaf.Sign,
		Region:      leaf.Region,
		Hazard:      leaf.Hazard,
		ZoneID:      leaf.ZoneID,
		Sender:      req.PhoneNumber,
		SubmittedAt: s.clock.Now().UTC(),
	}
	storeCtx, cancel := context.WithTimeout(ctx, reportStoreTimeout)
	defer cancel()
	if err := s.reports.Create(storeCtx, rep); err != nil {
		s.countReport("error")
		logCtx.WithError(err).WithField("sign", leaf.Sign).Error("Failed to persist sign report")
		return ack
	}
	s.countReport("success")
	logCtx.WithFields(logrus.Fields{"report_id": rep.ID, "sign": leaf.Sign, "zone": leaf.ZoneID}).Info("Sign report stored")
	return ack
}

func (s *SessionService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.USSDRequests.WithLabelValues(outcome).Inc()
	}
}

func (s *SessionService) countReport(outcome string) {
	if s.metrics != nil {
		s.metrics.ReportsStored.WithLabelValues(outcome).Inc()
	}
}
