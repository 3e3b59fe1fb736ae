// Package autoreply selects the automated response applicable to a department
// tag at a given instant.
package autoreply

import (
	"time"

	"github.com/ombrelle/switchboard/internal/hours"
	"github.com/ombrelle/switchboard/internal/models"
)

// Match returns the rule whose hour window contains the instant for the given
// tag, or nil when no rule applies (a normal outcome, not a fault). Rules with
// unparseable hours are skipped. When several windows overlap, the most
// recently created rule (highest ID) wins, so selection is deterministic
// regardless of input order.
func Match(rules []models.AutoReplyRule, tag string, instant time.Time) *models.AutoReplyRule {
	var winner *models.AutoReplyRule
	for i := range rules {
		r := &rules[i]
		if r.Tag != tag {
			continue
		}
		w, err := hours.Parse(r.Hours)
		if err != nil {
			continue
		}
		if !w.Contains(instant) {
			continue
		}
		if winner == nil || r.ID > winner.ID {
			winner = r
		}
	}
	return winner
}

// WithinOfficeHours reports whether the instant falls inside the configured
// office hours for a tag. Unparseable or missing hours count as closed.
func WithinOfficeHours(oh *models.OfficeHours, instant time.Time) bool {
	if oh == nil {
		return false
	}
	w, err := hours.Parse(oh.Hours)
	if err != nil {
		return false
	}
	return w.Contains(instant)
}
