package store

import (
	"fmt"
	"time"

	"github.com/ombrelle/switchboard/internal/models"
	"gorm.io/gorm"
)

// Templates returns canned replies, optionally filtered by department.
func Templates(gdb *gorm.DB, department string) ([]models.Template, error) {
	q := gdb.Order("name ASC")
	if department != "" {
		q = q.Where("department = ?", department)
	}
	var ts []models.Template
	if err := q.Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("store: templates: %w", err)
	}
	return ts, nil
}

// CreateTemplate stores a canned reply.
func CreateTemplate(gdb *gorm.DB, name, department, body string) (*models.Template, error) {
	if name == "" {
		return nil, fmt.Errorf("store: name is required")
	}
	if body == "" {
		return nil, fmt.Errorf("store: body is required")
	}

	tmpl := models.Template{
		Name:       name,
		Department: department,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if err := gdb.Create(&tmpl).Error; err != nil {
		return nil, fmt.Errorf("store: create template %q: %w", name, err)
	}
	return &tmpl, nil
}

// DeleteTemplate removes a canned reply by ID.
func DeleteTemplate(gdb *gorm.DB, id uint) error {
	result := gdb.Delete(&models.Template{}, id)
	if result.Error != nil {
		return fmt.Errorf("store: delete template %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: template not found: %d", id)
	}
	return nil
}
