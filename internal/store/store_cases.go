package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"workshop-backend/internal/model"
)

// ListBatteryCases returns battery cases scoped to a location.
func (s *gormStore) ListBatteryCases(ctx context.Context, f CaseFilter) ([]model.BatteryRecord, error) {
	q := s.db.WithContext(ctx).Where("location_id = ?", f.LocationID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var cases []model.BatteryRecord
	if err := q.Order("received_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("list battery cases: %w", err)
	}
	return cases, nil
}

func (s *gormStore) GetBatteryCase(ctx context.Context, id string) (*model.BatteryRecord, error) {
	var bc model.BatteryRecord
	if err := s.db.WithContext(ctx).First(&bc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bc, nil
}

// UpdateBatteryCase applies partial diagnostic and costing edits. Status is
// not touched here; transitions go through TransitionBatteryCase.
func (s *gormStore) UpdateBatteryCase(ctx context.Context, id string, upd BatteryCaseUpdate) (*model.BatteryRecord, error) {
	fields := map[string]any{}
	if upd.DiagnosticSummary != nil {
		fields["diagnostic_summary"] = *upd.DiagnosticSummary
	}
	if upd.EstimatedCost != nil {
		fields["estimated_cost"] = *upd.EstimatedCost
	}
	if upd.FinalCost != nil {
		fields["final_cost"] = *upd.FinalCost
	}
	if upd.PartsCost != nil {
		fields["parts_cost"] = *upd.PartsCost
	}
	if upd.LaborCost != nil {
		fields["labor_cost"] = *upd.LaborCost
	}

	var bc model.BatteryRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bc, "id = ?", id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&bc).Updates(fields).Error; err != nil {
			return fmt.Errorf("update battery case: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

// TransitionBatteryCase moves a battery case to a new status. The
// transition is validated against the battery table; an accepted transition
// writes the status update and exactly one history row in one transaction.
func (s *gormStore) TransitionBatteryCase(ctx context.Context, id string, to model.CaseStatus, actor, note string) (*model.BatteryRecord, error) {
	var bc model.BatteryRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bc, "id = ?", id).Error; err != nil {
			return err
		}
		if err := transitionGuard(model.CaseTypeBattery, bc.Status, to); err != nil {
			return err
		}

		previous := bc.Status
		bc.Status = to
		if err := tx.Model(&bc).Update("status", to).Error; err != nil {
			return fmt.Errorf("update battery status: %w", err)
		}

		history := model.BatteryStatusHistory{
			BatteryID:      bc.ID,
			PreviousStatus: previous,
			NewStatus:      to,
			ChangedBy:      actor,
			Note:           note,
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("append battery history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

func (s *gormStore) ListBatteryHistory(ctx context.Context, id string) ([]model.BatteryStatusHistory, error) {
	var history []model.BatteryStatusHistory
	err := s.db.WithContext(ctx).
		Where("battery_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("list battery history: %w", err)
	}
	return history, nil
}

// ListVehicleCases returns vehicle cases scoped to a location.
func (s *gormStore) ListVehicleCases(ctx context.Context, f CaseFilter) ([]model.VehicleCase, error) {
	q := s.db.WithContext(ctx).Where("location_id = ?", f.LocationID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var cases []model.VehicleCase
	if err := q.Order("received_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("list vehicle cases: %w", err)
	}
	return cases, nil
}

func (s *gormStore) GetVehicleCase(ctx context.Context, id string) (*model.VehicleCase, error) {
	var vc model.VehicleCase
	if err := s.db.WithContext(ctx).First(&vc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vc, nil
}

func (s *gormStore) UpdateVehicleCase(ctx context.Context, id string, upd VehicleCaseUpdate) (*model.VehicleCase, error) {
	var vc model.VehicleCase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&vc, "id = ?", id).Error; err != nil {
			return err
		}
		if upd.TechnicianNotes == nil {
			return nil
		}
		if err := tx.Model(&vc).Update("technician_notes", *upd.TechnicianNotes).Error; err != nil {
			return fmt.Errorf("update vehicle case: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

// TransitionVehicleCase moves a vehicle case to a new status under the more
// permissive vehicle table (backward steps, on_hold resume to any stage).
func (s *gormStore) TransitionVehicleCase(ctx context.Context, id string, to model.CaseStatus, actor, note string) (*model.VehicleCase, error) {
	var vc model.VehicleCase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&vc, "id = ?", id).Error; err != nil {
			return err
		}
		if err := transitionGuard(model.CaseTypeVehicle, vc.Status, to); err != nil {
			return err
		}

		previous := vc.Status
		vc.Status = to
		if err := tx.Model(&vc).Update("status", to).Error; err != nil {
			return fmt.Errorf("update vehicle status: %w", err)
		}

		history := model.VehicleStatusHistory{
			VehicleCaseID:  vc.ID,
			PreviousStatus: previous,
			NewStatus:      to,
			ChangedBy:      actor,
			Note:           note,
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("append vehicle history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

func (s *gormStore) ListVehicleHistory(ctx context.Context, id string) ([]model.VehicleStatusHistory, error) {
	var history []model.VehicleStatusHistory
	err := s.db.WithContext(ctx).
		Where("vehicle_case_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("list vehicle history: %w", err)
	}
	return history, nil
}
