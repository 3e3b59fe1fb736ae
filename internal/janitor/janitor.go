// Package janitor runs the background maintenance the conversation core
// deliberately leaves to the service layer: closing idle sessions and
// auditing session segmentation for data-integrity faults.
package janitor

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ombrelle/switchboard/internal/models"
	"github.com/ombrelle/switchboard/internal/notify"
	"github.com/ombrelle/switchboard/internal/segment"
	"github.com/ombrelle/switchboard/internal/store"
	"gorm.io/gorm"
)

// DefaultIdleTimeout closes open sessions with no traffic for a day.
const DefaultIdleTimeout = 24 * time.Hour

// Janitor periodically closes idle sessions and audits segmentation.
type Janitor struct {
	db       *gorm.DB
	notifier *notify.Notifier
	idle     time.Duration
	now      func() time.Time
}

// Opts holds parameters for creating a Janitor.
type Opts struct {
	DB          *gorm.DB
	Notifier    *notify.Notifier // optional
	IdleTimeout time.Duration    // defaults to DefaultIdleTimeout
	Now         func() time.Time // for testing
}

// New creates a Janitor.
func New(opts Opts) (*Janitor, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("janitor: db is required")
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.New(notify.Opts{})
	}
	return &Janitor{db: opts.DB, notifier: notifier, idle: idle, now: now}, nil
}

// Report summarizes one sweep.
type Report struct {
	ClosedTickets []string
	Unassigned    int
	Ambiguous     int
}

// Sweep closes idle open sessions and audits every phone's segmentation.
// Anomalies are reported to the notifier and in the returned Report; they are
// never repaired here. The data is owned upstream.
func (j *Janitor) Sweep() (Report, error) {
	var report Report

	closed, err := j.closeIdle()
	if err != nil {
		return report, err
	}
	report.ClosedTickets = closed

	unassigned, ambiguous, err := j.audit()
	if err != nil {
		return report, err
	}
	report.Unassigned = unassigned
	report.Ambiguous = ambiguous

	if len(report.ClosedTickets) > 0 || report.Unassigned > 0 || report.Ambiguous > 0 {
		log.Printf("janitor: sweep closed=%d unassigned=%d ambiguous=%d",
			len(report.ClosedTickets), report.Unassigned, report.Ambiguous)
	}
	return report, nil
}

// closeIdle closes every open session whose last activity is older than the
// idle timeout. Last activity is the later of the session start and the
// phone's newest message.
func (j *Janitor) closeIdle() ([]string, error) {
	var open []models.Session
	if err := j.db.Where("end_ts IS NULL").Find(&open).Error; err != nil {
		return nil, fmt.Errorf("janitor: open sessions: %w", err)
	}

	cutoff := j.now().Add(-j.idle).UnixMilli()
	var closed []string
	for _, s := range open {
		last := s.StartTS
		var newest int64
		err := j.db.Model(&models.Message{}).Where("phone = ?", s.Phone).
			Select("COALESCE(MAX(timestamp), 0)").Scan(&newest).Error
		if err != nil {
			return nil, fmt.Errorf("janitor: last activity for %s: %w", s.Phone, err)
		}
		if newest > last {
			last = newest
		}
		if last >= cutoff {
			continue
		}

		if err := store.CloseSession(j.db, s.Ticket, last); err != nil {
			return nil, fmt.Errorf("janitor: close idle %s: %w", s.Ticket, err)
		}
		closed = append(closed, s.Ticket)
		j.notifier.IdleClosed(s.Ticket, s.Phone)
	}
	return closed, nil
}

// audit re-segments every phone that has sessions and reports anomalies.
func (j *Janitor) audit() (unassigned, ambiguous int, err error) {
	var phones []string
	if err := j.db.Model(&models.Session{}).Distinct("phone").Pluck("phone", &phones).Error; err != nil {
		return 0, 0, fmt.Errorf("janitor: phones: %w", err)
	}

	for _, phone := range phones {
		sessions, err := store.SessionsForPhone(j.db, phone)
		if err != nil {
			return 0, 0, err
		}
		messages, err := store.MessagesForPhone(j.db, phone)
		if err != nil {
			return 0, 0, err
		}

		res := segment.Segment(messages, sessions)
		if len(res.Unassigned) > 0 || len(res.Ambiguous) > 0 {
			unassigned += len(res.Unassigned)
			ambiguous += len(res.Ambiguous)
			j.notifier.IntegrityAlert(phone, len(res.Unassigned), res.Ambiguous)
		}
	}
	return unassigned, ambiguous, nil
}

// Start schedules sweeps on a 5-field cron expression and returns the running
// scheduler. The caller stops it on shutdown.
func (j *Janitor) Start(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := j.Sweep(); err != nil {
			log.Printf("janitor: sweep: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("janitor: schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
