package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"geoguard/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Refresher is the job the scheduler drives.
type Refresher interface {
	Run(ctx context.Context) (app.RefreshSummary, error)
}

type WeatherScheduler struct {
	cronEngine *cron.Cron
	refresher  Refresher
	logger     *logrus.Entry
	cronSpec   string        // e.g., "0 * * * *" (top of every hour)
	jobTimeout time.Duration // upper bound for one full scan
	runOnStart bool

	job     cron.Job
	startWG sync.WaitGroup
}

func NewWeatherScheduler(
	refresher Refresher,
	logger *logrus.Entry,
	cronSpec string,
	jobTimeout time.Duration,
	location *time.Location,
	runOnStart bool,
) *WeatherScheduler {
	if location == nil {
		location = time.Local
	}
	s := &WeatherScheduler{
		cronEngine: cron.New(cron.WithLocation(location)),
		refresher:  refresher,
		logger:     logger,
		cronSpec:   cronSpec,
		jobTimeout: jobTimeout,
		runOnStart: runOnStart,
	}
	// A slow scan must not overlap the next tick or the startup run.
	s.job = cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))).Then(cron.FuncJob(s.executeRefresh))
	return s
}

// Start registers the refresh job and, when configured, runs one scan immediately in the background.
func (s *WeatherScheduler) Start() error {
	s.logger.Info("Starting weather scheduler...")

	if _, err := s.cronEngine.AddJob(s.cronSpec, s.job); err != nil {
		return fmt.Errorf("could not add weather refresh cron job %q: %w", s.cronSpec, err)
	}

	if s.runOnStart {
		s.startWG.Add(1)
		go func() {
			defer s.startWG.Done()
			s.logger.Info("Running startup weather scan.")
			s.job.Run()
		}()
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Weather scheduler started.")
	return nil
}

func (s *WeatherScheduler) executeRefresh() {
	s.logger.Info("Cron job triggered for weather refresh.")
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	if _, err := s.refresher.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Error during weather refresh")
	}
}

// Stop halts the schedule and waits for a running scan, including the startup one.
func (s *WeatherScheduler) Stop() {
	s.logger.Info("Stopping weather scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.startWG.Wait()
	s.logger.Info("Weather scheduler gracefully stopped.")
}
