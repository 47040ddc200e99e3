package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// PeriodicJob es una tarea de mantenimiento que corre en intervalos fijos.
type PeriodicJob struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// StartScheduler registra los trabajos y arranca el scheduler. Cada trabajo corre una vez al iniciar.
func StartScheduler(ctx context.Context, logger *zap.Logger, jobs ...PeriodicJob) (gocron.Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if job.Interval <= 0 {
			logger.Info("scheduled job disabled", zap.String("job", job.Name))
			continue
		}
		run := job.Run
		name := job.Name
		_, err := sched.NewJob(
			gocron.DurationJob(job.Interval),
			gocron.NewTask(func() {
				start := time.Now()
				run(ctx)
				logger.Debug("scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
			}),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("schedule %s: %w", name, err)
		}
	}
	sched.Start()
	return sched, nil
}

// MaintenanceJobs arma los trabajos de calentamiento del ranking y sondeo del backend.
func MaintenanceJobs(leaderboard *LeaderboardService, warmEvery time.Duration, monitor *BackendMonitor, probeEvery time.Duration) []PeriodicJob {
	var jobs []PeriodicJob
	if leaderboard != nil {
		jobs = append(jobs, PeriodicJob{Name: "leaderboard-warm", Interval: warmEvery, Run: leaderboard.Warm})
	}
	if monitor != nil {
		jobs = append(jobs, PeriodicJob{Name: "backend-probe", Interval: probeEvery, Run: func(ctx context.Context) { monitor.Probe(ctx) }})
	}
	return jobs
}
