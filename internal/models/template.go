package models

import "time"

// Template is a canned reply agents insert when responding to customers.
type Template struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"size:128;not null;uniqueIndex"`
	Department string `gorm:"size:16;index"`
	Body       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
}
