package models

import "time"

// Message direction values as delivered by the messaging gateway.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Message is a single inbound or outbound message in a customer conversation.
// Messages are append-only: created by inbound delivery or an outbound send,
// never updated or deleted by the console.
type Message struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Phone        string `gorm:"size:32;not null;index"`
	Direction    string `gorm:"size:8;not null"` // "incoming" or "outgoing"
	Timestamp    int64  `gorm:"not null;index"`  // epoch milliseconds
	Body         string `gorm:"type:text"`
	MediaURL     string `gorm:"size:512"`
	LocationJSON string `gorm:"type:text"`
	CreatedAt    time.Time
}
