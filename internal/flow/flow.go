// Package flow maintains the structural invariants of automation flows:
// step order survives edits, flow membership is immutable, and deleting a
// flow removes its steps. Execution belongs to the external automation
// engine, not the console.
package flow

import (
	"fmt"
	"time"

	"github.com/ombrelle/switchboard/internal/models"
	"gorm.io/gorm"
)

// StepInput is one condition→response pair in a save request. Order in the
// slice is the order persisted.
type StepInput struct {
	Condition string
	Response  string
}

// Create stores a new empty flow.
func Create(gdb *gorm.DB, name string) (*models.Flow, error) {
	if name == "" {
		return nil, fmt.Errorf("flow: name is required")
	}
	f := models.Flow{Name: name, CreatedAt: time.Now()}
	if err := gdb.Create(&f).Error; err != nil {
		return nil, fmt.Errorf("flow: create %q: %w", name, err)
	}
	return &f, nil
}

// List returns all flows, oldest first, with steps in sequence order.
func List(gdb *gorm.DB) ([]models.Flow, error) {
	var flows []models.Flow
	if err := gdb.Preload("Steps", orderBySequence).Order("id ASC").Find(&flows).Error; err != nil {
		return nil, fmt.Errorf("flow: list: %w", err)
	}
	return flows, nil
}

// Get fetches a flow by ID with its steps in sequence order.
func Get(gdb *gorm.DB, id uint) (*models.Flow, error) {
	var f models.Flow
	if err := gdb.Preload("Steps", orderBySequence).First(&f, id).Error; err != nil {
		return nil, fmt.Errorf("flow: %d: %w", id, err)
	}
	return &f, nil
}

func orderBySequence(tx *gorm.DB) *gorm.DB {
	return tx.Order("sequence ASC")
}

// Delete removes a flow and cascades to all its steps. Both are removed in
// one transaction so a failure leaves the flow intact.
func Delete(gdb *gorm.DB, id uint) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", id).Delete(&models.FlowStep{}).Error; err != nil {
			return fmt.Errorf("flow: delete steps of %d: %w", id, err)
		}
		result := tx.Delete(&models.Flow{}, id)
		if result.Error != nil {
			return fmt.Errorf("flow: delete %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("flow: not found: %d", id)
		}
		return nil
	})
}

// Steps returns a flow's steps in sequence order. A flow with no steps (or a
// deleted flow) yields an empty slice, not an error.
func Steps(gdb *gorm.DB, flowID uint) ([]models.FlowStep, error) {
	var steps []models.FlowStep
	if err := gdb.Where("flow_id = ?", flowID).
		Order("sequence ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("flow: steps of %d: %w", flowID, err)
	}
	return steps, nil
}

// SaveSteps replaces a flow's steps with the given list, in the given order.
// This is the page-level "Save All": one atomic request, last write wins.
// Steps cannot be moved between flows; the flow ID is fixed at save time.
func SaveSteps(gdb *gorm.DB, flowID uint, inputs []StepInput) ([]models.FlowStep, error) {
	if _, err := Get(gdb, flowID); err != nil {
		return nil, err
	}
	for i, in := range inputs {
		if in.Condition == "" {
			return nil, fmt.Errorf("flow: step %d: condition is required", i+1)
		}
		if in.Response == "" {
			return nil, fmt.Errorf("flow: step %d: response is required", i+1)
		}
	}

	var saved []models.FlowStep
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", flowID).Delete(&models.FlowStep{}).Error; err != nil {
			return fmt.Errorf("flow: clear steps of %d: %w", flowID, err)
		}
		for i, in := range inputs {
			step := models.FlowStep{
				FlowID:    flowID,
				Sequence:  i + 1,
				Condition: in.Condition,
				Response:  in.Response,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&step).Error; err != nil {
				return fmt.Errorf("flow: save step %d of %d: %w", i+1, flowID, err)
			}
			saved = append(saved, step)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
