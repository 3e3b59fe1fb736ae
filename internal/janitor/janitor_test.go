package janitor

import (
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/ombrelle/switchboard/internal/models"
	"github.com/ombrelle/switchboard/internal/notify"
	"github.com/ombrelle/switchboard/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Message{}, &models.Session{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

type capturingPoster struct {
	texts []string
}

func (c *capturingPoster) post(url string, msg *slackapi.WebhookMessage) error {
	c.texts = append(c.texts, msg.Text)
	return nil
}

func newTestJanitor(t *testing.T, gdb *gorm.DB, now time.Time, idle time.Duration) (*Janitor, *capturingPoster) {
	t.Helper()
	poster := &capturingPoster{}
	n := notify.New(notify.Opts{
		WebhookURL: "https://hooks.slack.com/services/T/B/x",
		Post:       poster.post,
	})
	j, err := New(Opts{
		DB:          gdb,
		Notifier:    n,
		IdleTimeout: idle,
		Now:         func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return j, poster
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNew_NilDB(t *testing.T) {
	if _, err := New(Opts{}); err == nil {
		t.Fatal("expected error for nil DB")
	}
}

func TestNew_Defaults(t *testing.T) {
	j, err := New(Opts{DB: openTestDB(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if j.idle != DefaultIdleTimeout {
		t.Errorf("idle = %v, want %v", j.idle, DefaultIdleTimeout)
	}
}

// ---------------------------------------------------------------------------
// Idle closing
// ---------------------------------------------------------------------------

func TestSweep_ClosesIdleSession(t *testing.T) {
	gdb := openTestDB(t)
	now := time.Now()

	stale := now.Add(-48 * time.Hour).UnixMilli()
	s, err := store.OpenSession(gdb, "p1", "support", "", stale)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	store.RecordOutbound(gdb, "p1", "hello", stale+1000, "")

	j, poster := newTestJanitor(t, gdb, now, 24*time.Hour)
	report, err := j.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if len(report.ClosedTickets) != 1 || report.ClosedTickets[0] != s.Ticket {
		t.Errorf("ClosedTickets = %v", report.ClosedTickets)
	}

	got, _ := store.SessionByTicket(gdb, s.Ticket)
	if got.Open() {
		t.Error("idle session still open after sweep")
	}
	if *got.EndTS != stale+1000 {
		t.Errorf("EndTS = %d, want last activity %d", *got.EndTS, stale+1000)
	}

	if len(poster.texts) == 0 {
		t.Error("expected an idle-closed alert")
	}
}

func TestSweep_KeepsActiveSession(t *testing.T) {
	gdb := openTestDB(t)
	now := time.Now()

	_, _, err := store.RecordInbound(gdb, "p1", "hi", now.Add(-time.Hour).UnixMilli(), store.InboundOpts{})
	if err != nil {
		t.Fatalf("RecordInbound: %v", err)
	}

	j, _ := newTestJanitor(t, gdb, now, 24*time.Hour)
	report, err := j.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(report.ClosedTickets) != 0 {
		t.Errorf("active session closed: %v", report.ClosedTickets)
	}
}

func TestSweep_RecentMessageKeepsOldSessionOpen(t *testing.T) {
	gdb := openTestDB(t)
	now := time.Now()

	// Session opened long ago but the customer wrote an hour ago.
	old := now.Add(-72 * time.Hour).UnixMilli()
	if _, err := store.OpenSession(gdb, "p1", "support", "", old); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	store.RecordOutbound(gdb, "p1", "checking in", now.Add(-time.Hour).UnixMilli(), "")

	j, _ := newTestJanitor(t, gdb, now, 24*time.Hour)
	report, _ := j.Sweep()
	if len(report.ClosedTickets) != 0 {
		t.Errorf("session with recent traffic closed: %v", report.ClosedTickets)
	}
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

func TestSweep_AuditFlagsAnomalies(t *testing.T) {
	gdb := openTestDB(t)
	now := time.Now()

	base := now.Add(-time.Hour).UnixMilli()
	end := base + 1000
	gdb.Create(&models.Session{Ticket: "T1", Phone: "p1", StartTS: base, EndTS: &end, Strategy: models.StrategyWindow})
	gdb.Create(&models.Session{Ticket: "T2", Phone: "p1", StartTS: end, Strategy: models.StrategyWindow})

	// One message before every window, one on the shared boundary.
	store.RecordOutbound(gdb, "p1", "early", base-5000, "")
	store.RecordOutbound(gdb, "p1", "boundary", end, "")

	j, poster := newTestJanitor(t, gdb, now, 24*time.Hour)
	report, err := j.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if report.Unassigned != 1 {
		t.Errorf("Unassigned = %d, want 1", report.Unassigned)
	}
	if report.Ambiguous != 1 {
		t.Errorf("Ambiguous = %d, want 1", report.Ambiguous)
	}
	if len(poster.texts) == 0 {
		t.Error("expected an integrity alert")
	}
}

func TestSweep_CleanDataIsQuiet(t *testing.T) {
	gdb := openTestDB(t)
	now := time.Now()

	_, _, err := store.RecordInbound(gdb, "p1", "hi", now.Add(-time.Minute).UnixMilli(), store.InboundOpts{})
	if err != nil {
		t.Fatalf("RecordInbound: %v", err)
	}

	j, poster := newTestJanitor(t, gdb, now, 24*time.Hour)
	report, err := j.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Unassigned != 0 || report.Ambiguous != 0 {
		t.Errorf("report = %+v, want clean", report)
	}
	if len(poster.texts) != 0 {
		t.Errorf("alerts = %v, want none", poster.texts)
	}
}

// ---------------------------------------------------------------------------
// Scheduling
// ---------------------------------------------------------------------------

func TestStart_BadSchedule(t *testing.T) {
	j, _ := newTestJanitor(t, openTestDB(t), time.Now(), time.Hour)
	if _, err := j.Start("not a cron spec"); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStart_ValidSchedule(t *testing.T) {
	j, _ := newTestJanitor(t, openTestDB(t), time.Now(), time.Hour)
	c, err := j.Start("*/10 * * * *")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()
	if len(c.Entries()) != 1 {
		t.Errorf("cron entries = %d, want 1", len(c.Entries()))
	}
}
