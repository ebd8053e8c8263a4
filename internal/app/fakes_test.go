package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"geoguard/internal/app"
	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/report"
	"geoguard/internal/infra/config"
	idb "geoguard/internal/infra/database"
	"geoguard/internal/infra/openweather"

	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

var nairobi = mustLocation("Africa/Nairobi")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	cat, err := config.LoadCatalog("")
	require.NoError(t, err)
	return cat
}

type fakeObservations struct {
	mu     sync.Mutex
	byZone map[string]observation.Observation
	err    error
	delay  time.Duration
	saved  []observation.Observation
}

func newFakeObservations(obs ...observation.Observation) *fakeObservations {
	f := &fakeObservations{byZone: make(map[string]observation.Observation)}
	for _, o := range obs {
		f.byZone[o.Zone] = o
	}
	return f
}

func (f *fakeObservations) Latest(ctx context.Context, zoneName string) (*observation.Observation, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	o, ok := f.byZone[zoneName]
	if !ok {
		return nil, idb.ErrObservationNotFound
	}
	return &o, nil
}

func (f *fakeObservations) Save(_ context.Context, o *observation.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *o)
	f.byZone[o.Zone] = *o
	return nil
}

type fakeReports struct {
	mu      sync.Mutex
	created []report.Report
	err     error
}

func (f *fakeReports) Create(_ context.Context, r *report.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *r)
	return nil
}

type fakeAnalyzer struct {
	text     string
	err      error
	gotMime  string
	gotBytes []byte
}

func (f *fakeAnalyzer) AnalyzeImage(_ context.Context, mimeType string, data []byte) (string, error) {
	f.gotMime = mimeType
	f.gotBytes = data
	return f.text, f.err
}

type sentMessage struct {
	chatID    int64
	text      string
	parseMode telebot.ParseMode
}

type fakeTelegram struct {
	sent    []sentMessage
	failFor string // substring of the text that makes SendMessage fail
}

func (f *fakeTelegram) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if f.failFor != "" && strings.Contains(text, f.failFor) {
		return errors.New("telegram: chat not found")
	}
	msg := sentMessage{chatID: chatID, text: text}
	if options != nil {
		msg.parseMode = options.ParseMode
	}
	f.sent = append(f.sent, msg)
	return nil
}

type coord struct{ lat, lon float64 }

type fakeWeather struct {
	current map[coord]openweather.Current
	errs    map[coord]error
	calls   int
}

func (f *fakeWeather) CurrentWeather(_ context.Context, lat, lon float64) (openweather.Current, error) {
	f.calls++
	if err, ok := f.errs[coord{lat, lon}]; ok {
		return openweather.Current{}, err
	}
	return f.current[coord{lat, lon}], nil
}

type fakeNotifier struct {
	calls  int
	alerts []app.Alert
	err    error
}

func (f *fakeNotifier) Broadcast(_ context.Context, alerts []app.Alert) error {
	f.calls++
	f.alerts = append(f.alerts, alerts...)
	return f.err
}
