// File: internal/jobs/ride_reminder.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/config"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/notification"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/ride"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RideReminderJob periodically scans upcoming rides and creates their
// event_reminder notifications.
//
// The job keeps no cross-run state: every run re-derives its window from the
// clock, and the notification store's dedupe-key unique index makes repeated
// or concurrent scans of the same ride safe. That is what allows several
// deployment instances to run this job at once.
type RideReminderJob struct {
	rideRepo      ride.Repository
	notifications notification.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewRideReminderJob creates a new RideReminderJob.
func NewRideReminderJob(
	rideRepo ride.Repository,
	notifications notification.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *RideReminderJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &RideReminderJob{
		rideRepo:      rideRepo,
		notifications: notifications,
		logger:        logger.Named("RideReminderJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *RideReminderJob) SetupAndStart() error {
	jobSpec := j.cfg.RideReminderJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Ride reminder job schedule not defined (RIDE_REMINDER_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule ride reminder job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Ride reminder job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the work performed by each cron tick.
func (j *RideReminderJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, err := j.ScanOnce(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("Ride reminder scan failed", zap.Error(err))
		return
	}
	j.logger.Info("Ride reminder scan completed", zap.Int("reminders_created", created))
}

// ScanOnce performs one reminder sweep as of the given wall-clock time and
// returns how many reminders it created.
//
// The query window is [now, now + leadTime + scanWindow): its far edge fires
// reminders up to scanWindow early so runs overlap rather than leave gaps,
// and its near edge reaches all the way back to "starts now", so a reminder
// whose due time passed while the process was down is still created — late,
// but never silently lost. Rides that already started are left alone.
func (j *RideReminderJob) ScanOnce(ctx context.Context, now time.Time) (int, error) {
	windowEnd := now.Add(j.cfg.ReminderLeadTime + j.cfg.ReminderScanWindow)

	// Bounded per run; anything beyond the cap is picked up by the next tick.
	rides, err := j.rideRepo.FindStartingBetween(ctx, now, windowEnd, j.cfg.ReminderMaxRidesPerRun)
	if err != nil {
		return 0, fmt.Errorf("querying rides for reminder scan: %w", err)
	}

	created := 0
	for i := range rides {
		r := &rides[i]

		roster, err := j.rideRepo.GetRoster(ctx, r.ID, ride.RSVPGoing, ride.RSVPMaybe)
		if err != nil {
			// Skip this ride; the next cycle retries it for free.
			j.logger.Error("Failed to load roster during reminder scan",
				zap.String("ride_id", r.ID.String()), zap.Error(err))
			continue
		}

		snapshot := ride.Snapshot(r)
		for _, rsvp := range roster {
			trigger := notification.ReminderTrigger(snapshot, rsvp.UserID, j.cfg.ReminderLeadTime)
			_, err := j.notifications.CreateFromTrigger(ctx, trigger)
			switch {
			case err == nil:
				created++
			case errors.Is(err, notification.ErrAlreadyExists):
				// Already reminded for this (ride, recipient, start time).
			case errors.Is(err, notification.ErrInvalidTrigger):
				j.logger.Error("Dropping malformed reminder trigger",
					zap.String("ride_id", r.ID.String()),
					zap.String("user_id", rsvp.UserID.String()),
					zap.Error(err))
			default:
				j.logger.Error("Failed to create ride reminder",
					zap.String("ride_id", r.ID.String()),
					zap.String("user_id", rsvp.UserID.String()),
					zap.Error(err))
			}
		}
	}

	return created, nil
}

// Stop gracefully stops the cron scheduler.
func (j *RideReminderJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping ride reminder job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Ride reminder job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Ride reminder job scheduler stop timed out.")
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
