// Package conversation builds the read models every console page renders:
// per-session message views, per-phone session overviews, and the cross-page
// chat listing. All projections are pure: refetching and rebuilding from the
// same underlying rows always yields the same view.
package conversation

import (
	"sort"

	"github.com/ombrelle/switchboard/internal/classify"
	"github.com/ombrelle/switchboard/internal/models"
	"github.com/ombrelle/switchboard/internal/segment"
)

// AnnotatedMessage pairs a message with its classification so renderers never
// re-derive content kinds inconsistently.
type AnnotatedMessage struct {
	models.Message
	Classification classify.Result
}

// SessionSummary labels a session for listing and headers.
type SessionSummary struct {
	Ticket       string
	Phone        string
	CustomerName string
	Department   string
	StartTS      int64
	EndTS        *int64
	Open         bool
	MessageCount int
	Unread       int
}

// View is the full render model for one selected session: its summary plus
// messages sorted ascending by timestamp. The last element is always the most
// recent message assigned to the session, so callers can scroll-to-latest.
type View struct {
	Summary  SessionSummary
	Messages []AnnotatedMessage
}

// Overview is the per-phone render model: every session for the customer plus
// the segmentation anomalies that must stay visible to operators.
type Overview struct {
	Phone        string
	CustomerName string
	Sessions     []SessionSummary
	Unassigned   []AnnotatedMessage
	Warnings     []segment.Ambiguity
}

// ChatSummary is one row of the chat listing shared by the all-chats and
// per-department pages.
type ChatSummary struct {
	Phone         string
	CustomerName  string
	Department    string
	OpenTicket    string
	LastKind      classify.Kind
	LastPreview   string
	LastTimestamp int64
	Unread        int
}

// Build produces the View for one session from its segmented bucket.
func Build(customer models.Customer, session models.Session, bucket []models.Message) View {
	annotated := annotate(bucket)
	sortAscending(annotated)

	return View{
		Summary: SessionSummary{
			Ticket:       session.Ticket,
			Phone:        session.Phone,
			CustomerName: customer.Name,
			Department:   session.Department,
			StartTS:      session.StartTS,
			EndTS:        session.EndTS,
			Open:         session.Open(),
			MessageCount: len(annotated),
			Unread:       unreadCount(bucket),
		},
		Messages: annotated,
	}
}

// BuildOverview segments a customer's full message stream and summarizes each
// session. Unassigned and ambiguous messages are carried through so every
// page shows the same diagnostics.
func BuildOverview(customer models.Customer, sessions []models.Session, messages []models.Message) Overview {
	res := segment.Segment(messages, sessions)

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		v := Build(customer, s, res.Buckets[s.Ticket])
		summaries = append(summaries, v.Summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].StartTS < summaries[j].StartTS
	})

	unassigned := annotate(res.Unassigned)
	sortAscending(unassigned)

	return Overview{
		Phone:        customer.Phone,
		CustomerName: customer.Name,
		Sessions:     summaries,
		Unassigned:   unassigned,
		Warnings:     res.Ambiguous,
	}
}

// Chats builds the listing of customer conversations, most recently active
// first. Each row carries the classified preview of the latest message, the
// unread count, and the open session ticket when one exists.
func Chats(customers []models.Customer, sessions []models.Session, messages []models.Message) []ChatSummary {
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.Phone] = c.Name
	}

	byPhone := make(map[string][]models.Message)
	for _, m := range messages {
		byPhone[m.Phone] = append(byPhone[m.Phone], m)
	}

	// The latest session labels the chat row; an open one also supplies the
	// ticket for reply routing.
	openByPhone := make(map[string]models.Session)
	latestByPhone := make(map[string]models.Session)
	for _, s := range sessions {
		if s.Open() {
			openByPhone[s.Phone] = s
		}
		if cur, ok := latestByPhone[s.Phone]; !ok || s.StartTS > cur.StartTS {
			latestByPhone[s.Phone] = s
		}
	}

	rows := make([]ChatSummary, 0, len(byPhone))
	for phone, msgs := range byPhone {
		last := latestMessage(msgs)
		cls := classify.Classify(last)

		row := ChatSummary{
			Phone:         phone,
			CustomerName:  names[phone],
			Department:    latestByPhone[phone].Department,
			LastKind:      cls.Kind,
			LastPreview:   preview(last, cls),
			LastTimestamp: last.Timestamp,
			Unread:        unreadCount(msgs),
		}
		if open, ok := openByPhone[phone]; ok {
			row.OpenTicket = open.Ticket
			row.Department = open.Department
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].LastTimestamp != rows[j].LastTimestamp {
			return rows[i].LastTimestamp > rows[j].LastTimestamp
		}
		return rows[i].Phone < rows[j].Phone
	})
	return rows
}

// preview renders the one-line listing preview for a message. Sentinel bodies
// and non-text kinds collapse to a kind placeholder.
func preview(msg models.Message, cls classify.Result) string {
	if cls.Kind == classify.KindText {
		return msg.Body
	}
	if msg.Body != "" && !cls.SuppressCaption {
		return msg.Body
	}
	switch cls.Kind {
	case classify.KindImage:
		return "[Image]"
	case classify.KindAudio:
		return "[Audio]"
	case classify.KindDocument:
		return "[Document]"
	case classify.KindLocation:
		return "[Location]"
	}
	return msg.Body
}

// unreadCount counts incoming messages newer than the last outgoing one.
func unreadCount(msgs []models.Message) int {
	var lastOut int64 = -1
	for _, m := range msgs {
		if m.Direction == models.DirectionOutgoing && m.Timestamp > lastOut {
			lastOut = m.Timestamp
		}
	}
	count := 0
	for _, m := range msgs {
		if m.Direction == models.DirectionIncoming && m.Timestamp > lastOut {
			count++
		}
	}
	return count
}

func annotate(msgs []models.Message) []AnnotatedMessage {
	out := make([]AnnotatedMessage, len(msgs))
	for i, m := range msgs {
		out[i] = AnnotatedMessage{Message: m, Classification: classify.Classify(m)}
	}
	return out
}

// sortAscending orders messages by timestamp, breaking ties by ID so the
// ordering is stable across refetches.
func sortAscending(msgs []AnnotatedMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp != msgs[j].Timestamp {
			return msgs[i].Timestamp < msgs[j].Timestamp
		}
		return msgs[i].ID < msgs[j].ID
	})
}

func latestMessage(msgs []models.Message) models.Message {
	last := msgs[0]
	for _, m := range msgs[1:] {
		if m.Timestamp > last.Timestamp || (m.Timestamp == last.Timestamp && m.ID > last.ID) {
			last = m
		}
	}
	return last
}
