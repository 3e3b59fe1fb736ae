package models

import "time"

// Membership strategy values for assigning messages to a session.
const (
	StrategyWindow  = "window"  // timestamp falls inside [StartTS, EndTS]
	StrategyMention = "mention" // legacy: ticket substring appears in message body
)

// Department tags used for routing, auto-replies and office hours.
const (
	DeptSupport  = "support"
	DeptSales    = "sales"
	DeptAccounts = "accounts"
)

// Session is a ticket-bounded conversation window between a customer and the
// business. EndTS nil means the session is still open. At most one session per
// phone may be open at a time; sessions for a phone are ordered by StartTS and
// must not overlap. Overlaps are upstream data faults the segmenter surfaces
// rather than repairs.
type Session struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Ticket     string `gorm:"size:64;not null;uniqueIndex"`
	Phone      string `gorm:"size:32;not null;index"`
	Department string `gorm:"size:16;not null;default:support"`
	StartTS    int64  `gorm:"not null"` // epoch milliseconds
	EndTS      *int64 // nil = open
	CustomerID string `gorm:"size:64"`
	Strategy   string `gorm:"size:8;not null;default:window"`
	CreatedAt  time.Time
}

// Open reports whether the session has no end timestamp yet.
func (s *Session) Open() bool { return s.EndTS == nil }

// Customer is a row in the client registry. Owned by the external registry;
// the console only reads it to label sessions and chat listings.
type Customer struct {
	Phone      string `gorm:"primaryKey;size:32"`
	Name       string `gorm:"size:128"`
	Email      string `gorm:"size:128"`
	CustomerID string `gorm:"size:64"`
	CreatedAt  time.Time
}
