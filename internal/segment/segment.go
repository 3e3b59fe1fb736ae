// Package segment partitions a customer's message stream into ticket-bounded
// session buckets. Anomalies (messages outside every window, or inside more
// than one) are surfaced on the result, never dropped or silently resolved.
package segment

import (
	"strings"

	"github.com/ombrelle/switchboard/internal/models"
)

// Ambiguity flags a message whose timestamp falls inside two or more session
// windows for its phone - an upstream data-integrity fault. The message is
// still present in every matching bucket so no view loses it.
type Ambiguity struct {
	Message models.Message
	Tickets []string
}

// Result is the outcome of segmenting a message stream.
type Result struct {
	// Buckets maps each session ticket to its messages, in input order.
	// Every session passed to Segment has an entry, possibly empty.
	Buckets map[string][]models.Message

	// Unassigned holds messages matching no session window for their phone.
	Unassigned []models.Message

	// Ambiguous holds messages matching more than one session window.
	Ambiguous []Ambiguity
}

// Segment assigns every message to the session buckets whose windows contain
// it. Closed windows are inclusive on both bounds; open sessions (no end
// timestamp) absorb everything at or after their start. Sessions using the
// legacy mention strategy match by ticket substring instead of timestamps.
func Segment(messages []models.Message, sessions []models.Session) Result {
	res := Result{Buckets: make(map[string][]models.Message, len(sessions))}
	for _, s := range sessions {
		res.Buckets[s.Ticket] = []models.Message{}
	}

	for _, msg := range messages {
		var matched []string
		for _, s := range sessions {
			if Member(msg, s) {
				matched = append(matched, s.Ticket)
			}
		}

		switch len(matched) {
		case 0:
			res.Unassigned = append(res.Unassigned, msg)
		case 1:
			res.Buckets[matched[0]] = append(res.Buckets[matched[0]], msg)
		default:
			for _, ticket := range matched {
				res.Buckets[ticket] = append(res.Buckets[ticket], msg)
			}
			res.Ambiguous = append(res.Ambiguous, Ambiguity{Message: msg, Tickets: matched})
		}
	}
	return res
}

// Member reports whether a message belongs to a session under the session's
// membership strategy.
func Member(msg models.Message, s models.Session) bool {
	if msg.Phone != s.Phone {
		return false
	}
	if s.Strategy == models.StrategyMention {
		return byTicketMention(msg, s)
	}
	return byWindow(msg, s)
}

// byWindow checks timestamp containment: [StartTS, EndTS] when closed,
// [StartTS, +inf) when open.
func byWindow(msg models.Message, s models.Session) bool {
	if msg.Timestamp < s.StartTS {
		return false
	}
	return s.EndTS == nil || msg.Timestamp <= *s.EndTS
}

// byTicketMention matches by ticket substring in the message body.
//
// Deprecated: kept only for tickets that are not timestamp-addressable.
// New sessions should always use the window strategy.
func byTicketMention(msg models.Message, s models.Session) bool {
	return s.Ticket != "" && strings.Contains(msg.Body, s.Ticket)
}
