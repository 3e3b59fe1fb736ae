package store

import (
	"fmt"
	"time"

	"github.com/ombrelle/switchboard/internal/hours"
	"github.com/ombrelle/switchboard/internal/models"
	"gorm.io/gorm"
)

// Rules returns auto-reply rules, optionally filtered by tag, oldest first.
func Rules(gdb *gorm.DB, tag string) ([]models.AutoReplyRule, error) {
	q := gdb.Order("id ASC")
	if tag != "" {
		q = q.Where("tag = ?", tag)
	}
	var rules []models.AutoReplyRule
	if err := q.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("store: rules: %w", err)
	}
	return rules, nil
}

// CreateRule validates and stores an auto-reply rule.
func CreateRule(gdb *gorm.DB, tag, hoursSpec, reply string) (*models.AutoReplyRule, error) {
	if tag == "" {
		return nil, fmt.Errorf("store: tag is required")
	}
	if reply == "" {
		return nil, fmt.Errorf("store: reply is required")
	}
	if _, err := hours.Parse(hoursSpec); err != nil {
		return nil, fmt.Errorf("store: rule hours: %w", err)
	}

	rule := models.AutoReplyRule{
		Tag:       tag,
		Hours:     hoursSpec,
		Reply:     reply,
		CreatedAt: time.Now(),
	}
	if err := gdb.Create(&rule).Error; err != nil {
		return nil, fmt.Errorf("store: create rule: %w", err)
	}
	return &rule, nil
}

// DeleteRule removes an auto-reply rule by ID.
func DeleteRule(gdb *gorm.DB, id uint) error {
	result := gdb.Delete(&models.AutoReplyRule{}, id)
	if result.Error != nil {
		return fmt.Errorf("store: delete rule %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: rule not found: %d", id)
	}
	return nil
}

// OfficeHoursFor returns the configured office hours for a tag, or nil when
// the department has none configured.
func OfficeHoursFor(gdb *gorm.DB, tag string) (*models.OfficeHours, error) {
	if tag == "" {
		return nil, fmt.Errorf("store: tag is required")
	}
	var oh models.OfficeHours
	err := gdb.Where("tag = ?", tag).First(&oh).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: office hours %s: %w", tag, err)
	}
	return &oh, nil
}

// SetOfficeHours creates or updates a department's office hours.
func SetOfficeHours(gdb *gorm.DB, tag, hoursSpec, closedReply string) (*models.OfficeHours, error) {
	if tag == "" {
		return nil, fmt.Errorf("store: tag is required")
	}
	if _, err := hours.Parse(hoursSpec); err != nil {
		return nil, fmt.Errorf("store: office hours: %w", err)
	}

	existing, err := OfficeHoursFor(gdb, tag)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		oh := models.OfficeHours{Tag: tag, Hours: hoursSpec, ClosedReply: closedReply}
		if err := gdb.Create(&oh).Error; err != nil {
			return nil, fmt.Errorf("store: create office hours %s: %w", tag, err)
		}
		return &oh, nil
	}

	existing.Hours = hoursSpec
	existing.ClosedReply = closedReply
	if err := gdb.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("store: update office hours %s: %w", tag, err)
	}
	return existing, nil
}
