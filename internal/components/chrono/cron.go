package chrono

import (
	"fmt"
	"storefront-harvester/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

// CronAPI is the interface that anything depending on things to happen on a cron job should use.
type CronAPI interface {
	// Cron schedules callback on spec. The returned run func invokes the same guarded job
	// outside the schedule, it is skipped like a tick would be while the job is running.
	Cron(spec string, callback func()) (run func(), err error)
}

// StandardCron is the standard implementation of CronAPI using `github.com/robfig/cron/v3`.
// A job that is still running when its next tick arrives is skipped, so a slow harvest never
// overlaps with itself.
type StandardCron struct {
	cron   *cron.Cron
	logger cron.Logger
}

// NewStandardCron is the constructor of StandardCron, the scheduler starts immediately.
func NewStandardCron(tel telemetry.API) StandardCron {
	logger := cronLogger{tel: tel}
	cronner := cron.New(cron.WithLogger(logger))
	cronner.Start()

	return StandardCron{
		cron:   cronner,
		logger: logger,
	}
}

func (s StandardCron) Cron(spec string, callback func()) (func(), error) {
	job := cron.NewChain(cron.SkipIfStillRunning(s.logger)).Then(cron.FuncJob(callback))
	_, err := s.cron.AddJob(spec, job)
	if err != nil {
		return nil, err
	}
	return job.Run, nil
}

// Stop stops scheduling new jobs and returns a channel that is closed once running jobs finish.
func (s StandardCron) Stop() <-chan struct{} {
	return s.cron.Stop().Done()
}

type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i < len(keysAndValues)/2; i++ {
		idx := i * 2
		params = append(params, fmt.Sprintf("%v: %v", keysAndValues[idx], keysAndValues[idx+1]))
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(
		fmt.Sprintf("cron: %s", msg),
		l.formatParams(keysAndValues)...,
	)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(
		"cron",
		append([]any{fmt.Errorf("%s: %w", msg, err)}, l.formatParams(keysAndValues)...)...,
	)
}
