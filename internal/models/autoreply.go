package models

import "time"

// AutoReplyRule defines an automated response active during an hour window for
// a department tag. Hours is "HH:MM-HH:MM" in 24-hour local time; windows may
// wrap midnight ("22:00-06:00"). When several rules in a tag cover the same
// instant, the most recently created rule wins.
type AutoReplyRule struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Tag       string `gorm:"size:16;not null;index"`
	Hours     string `gorm:"size:16;not null"`
	Reply     string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// OfficeHours stores the configured business hours for a department, plus the
// reply sent outside them. One row per tag.
type OfficeHours struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Tag         string `gorm:"size:16;not null;uniqueIndex"`
	Hours       string `gorm:"size:16;not null"`
	ClosedReply string `gorm:"type:text"`
	UpdatedAt   time.Time
}
