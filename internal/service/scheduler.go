package service

import (
	"context"
	"time"

	"pubudu-echanneling/internal/domain/repository"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the periodic jobs: appointment reminders for the next day
// and purging of expired password reset tokens.
type Scheduler struct {
	cron            *cron.Cron
	db              *gorm.DB
	log             *logrus.Logger
	loc             *time.Location
	appointmentRepo repository.AppointmentRepository
	resetTokenRepo  repository.PasswordResetTokenRepository
	notifier        NotificationService
	now             func() time.Time
}

func NewScheduler(
	db *gorm.DB,
	log *logrus.Logger,
	loc *time.Location,
	appointmentRepo repository.AppointmentRepository,
	resetTokenRepo repository.PasswordResetTokenRepository,
	notifier NotificationService,
) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(loc)),
		db:              db,
		log:             log,
		loc:             loc,
		appointmentRepo: appointmentRepo,
		resetTokenRepo:  resetTokenRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

// Start registers both jobs and starts the cron runner in the background.
func (s *Scheduler) Start(reminderSpec, cleanupSpec string) error {
	if _, err := s.cron.AddFunc(reminderSpec, func() { s.run("appointment reminders", s.SendReminders) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cleanupSpec, func() { s.run("reset token cleanup", s.PurgeExpiredResetTokens) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithFields(logrus.Fields{"reminders": reminderSpec, "cleanup": cleanupSpec}).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out")
	}
}

func (s *Scheduler) run(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Errorf("Job %q failed: %+v", name, err)
		return
	}
	s.log.Infof("Job %q finished in %v", name, time.Since(start))
}

// SendReminders notifies every patient with an open appointment tomorrow.
func (s *Scheduler) SendReminders(ctx context.Context) error {
	tomorrow := s.now().In(s.loc).AddDate(0, 0, 1).Format("2006-01-02")

	appointments, err := s.appointmentRepo.FindOpenByDate(s.db.WithContext(ctx), tomorrow)
	if err != nil {
		return err
	}

	sent := 0
	for i := range appointments {
		a := &appointments[i]
		if err := s.notifier.AppointmentReminder(ctx, &a.Patient.User, a); err != nil {
			s.log.Warnf("Failed to send reminder for appointment %s: %+v", a.ID, err)
			continue
		}
		sent++
	}

	s.log.Infof("Sent %d/%d reminders for %s", sent, len(appointments), tomorrow)
	return nil
}

func (s *Scheduler) PurgeExpiredResetTokens(ctx context.Context) error {
	n, err := s.resetTokenRepo.DeleteExpired(s.db.WithContext(ctx), s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Infof("Purged %d expired password reset tokens", n)
	}
	return nil
}
