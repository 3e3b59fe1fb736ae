// Package notify delivers operational alerts to Slack. Delivery is
// best-effort: failures are logged, never returned, so alerting can never
// break the console.
package notify

import (
	"fmt"
	"log"
	"strings"

	slackapi "github.com/slack-go/slack"
	"github.com/ombrelle/switchboard/internal/segment"
)

// webhookPoster abstracts the Slack webhook call, enabling test fakes.
type webhookPoster func(url string, msg *slackapi.WebhookMessage) error

// Notifier posts console alerts to a Slack webhook. A Notifier with no
// webhook URL is valid and silently drops everything.
type Notifier struct {
	webhookURL string
	channel    string
	post       webhookPoster
}

// Opts holds parameters for creating a Notifier.
type Opts struct {
	WebhookURL string
	Channel    string
	// For testing: inject a fake poster instead of the Slack API.
	Post func(url string, msg *slackapi.WebhookMessage) error
}

// New creates a Notifier.
func New(opts Opts) *Notifier {
	post := opts.Post
	if post == nil {
		post = slackapi.PostWebhook
	}
	return &Notifier{
		webhookURL: opts.WebhookURL,
		channel:    opts.Channel,
		post:       post,
	}
}

// Enabled reports whether alerts will actually be sent.
func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

// IntegrityAlert reports segmentation anomalies for a phone: messages outside
// every session window and messages claimed by overlapping windows.
func (n *Notifier) IntegrityAlert(phone string, unassigned int, ambiguous []segment.Ambiguity) {
	if unassigned == 0 && len(ambiguous) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation data warning for %s:", phone)
	if unassigned > 0 {
		fmt.Fprintf(&b, " %d message(s) outside every session window;", unassigned)
	}
	for _, amb := range ambiguous {
		fmt.Fprintf(&b, " message %d claimed by sessions %s;",
			amb.Message.ID, strings.Join(amb.Tickets, ", "))
	}
	n.send(strings.TrimSuffix(b.String(), ";"))
}

// IdleClosed reports that the janitor closed an idle session.
func (n *Notifier) IdleClosed(ticket, phone string) {
	n.send(fmt.Sprintf("Closed idle session %s for %s", ticket, phone))
}

func (n *Notifier) send(text string) {
	if !n.Enabled() {
		return
	}
	msg := &slackapi.WebhookMessage{Channel: n.channel, Text: text}
	if err := n.post(n.webhookURL, msg); err != nil {
		log.Printf("notify: slack webhook: %v", err)
	}
}
