package models

import "time"

// Flow is a named, ordered list of condition→response steps. Steps are stored
// for an external automation engine to execute; the console only maintains the
// structural invariants (step order, flow membership, cascade delete).
type Flow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:128;not null"`
	CreatedAt time.Time

	Steps []FlowStep `gorm:"foreignKey:FlowID;constraint:OnDelete:CASCADE"`
}

// FlowStep is one condition→response pair within a flow. FlowID is immutable
// once the step is created; Sequence gives the step's position within its flow.
type FlowStep struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	FlowID    uint   `gorm:"not null;index"`
	Sequence  int    `gorm:"not null"`
	Condition string `gorm:"type:text;not null"`
	Response  string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
