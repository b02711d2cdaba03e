package common

import (
	"fmt"
	"time"

	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"gorm.io/gorm"
)

// AssignShift places an employee into a named slot on a date. The same slot
// twice on the same day is rejected; different slots on one day are allowed.
func AssignShift(shopId uint, params *types.AssignShiftRequestBody, actor types.Actor) (*models.ShiftAssignment, error) {
	workDate, err := time.Parse(config.DATE_PARSE_FORMAT, params.WorkDate)
	if err != nil {
		return nil, types.ErrValidation("work_date is not a valid date")
	}
	slot := types.ShiftSlot(params.ShiftSlot)
	if _, _, ok := types.ShiftSlotWindow(slot); !ok {
		return nil, types.ErrValidation(fmt.Sprintf("unknown shift slot %q", params.ShiftSlot))
	}

	assignment := models.ShiftAssignment{
		ShopID:     shopId,
		EmployeeID: params.EmployeeID,
		ShiftSlot:  slot,
		WorkDate:   workDate,
	}
	dbi := db.GetDb()
	err = dbi.Transaction(func(tx *gorm.DB) error {
		if err := requireShopStaff(tx, shopId, actor); err != nil {
			return err
		}
		var employee models.Employee
		if err := tx.
			Model(&models.Employee{}).
			Where(&models.Employee{ID: params.EmployeeID, ShopID: shopId, Active: true}).
			First(&employee).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotEligible("employee does not belong to this shop"))
		}
		var count int64
		if err := tx.
			Model(&models.ShiftAssignment{}).
			Where("employee_id = ? AND shift_slot = ? AND work_date = ?", params.EmployeeID, slot, workDate).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return types.ErrDuplicateAssignment(fmt.Sprintf("employee %d already holds the %s slot on %s", params.EmployeeID, slot, params.WorkDate))
		}
		if err := tx.Create(&assignment).Error; err != nil {
			if isDuplicateKey(err) {
				return types.ErrDuplicateAssignment(fmt.Sprintf("employee %d already holds the %s slot on %s", params.EmployeeID, slot, params.WorkDate))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	go models.ShiftAssignedProducer(assignment.ID, types.JSONB{
		"id":        assignment.ID,
		"shop":      assignment.ShopID,
		"employee":  assignment.EmployeeID,
		"slot":      string(assignment.ShiftSlot),
		"work_date": params.WorkDate,
	})
	return &assignment, nil
}

// BulkAssignShifts applies each entry independently and reports per-entry
// outcomes. Expected collisions from repeated weekly patterns skip-and-report
// rather than failing the whole batch.
func BulkAssignShifts(shopId uint, entries []types.AssignShiftRequestBody, actor types.Actor) []types.ShiftAssignResult {
	results := make([]types.ShiftAssignResult, 0, len(entries))
	for i, entry := range entries {
		assignment, err := AssignShift(shopId, &entry, actor)
		if err != nil {
			result := types.ShiftAssignResult{Index: i, Message: err.Error()}
			if derr, ok := err.(*types.DomainError); ok {
				result.ErrorKind = derr.Kind
			}
			results = append(results, result)
			continue
		}
		id := assignment.ID
		results = append(results, types.ShiftAssignResult{Index: i, AssignmentID: &id})
	}
	return results
}

// RemoveShift deletes an assignment. Rows are never updated in place; a
// changed shift is a remove plus a new assignment.
func RemoveShift(assignmentId uint, actor types.Actor) error {
	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var assignment models.ShiftAssignment
		if err := tx.
			Model(&models.ShiftAssignment{}).
			Where(&models.ShiftAssignment{ID: assignmentId}).
			First(&assignment).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotFound("shift assignment not found"))
		}
		if err := requireShopStaff(tx, assignment.ShopID, actor); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.ShiftAssignment{}, assignment.ID).Error
	})
}

// WeekGrid is the 7x3 projection of a week of shift assignments: one row per
// day starting at weekStart, one cell per slot.
type WeekGrid struct {
	WeekStart string        `json:"week_start"`
	Days      []WeekGridDay `json:"days"`
}

type WeekGridDay struct {
	Date  string                                       `json:"date"`
	Slots map[types.ShiftSlot][]models.ShiftAssignment `json:"slots"`
}

// BuildWeekGrid assembles the grid from fetched rows. Pure projection, no
// side effects.
func BuildWeekGrid(weekStart time.Time, assignments []models.ShiftAssignment) WeekGrid {
	grid := WeekGrid{WeekStart: weekStart.Format(config.DATE_PARSE_FORMAT)}
	byDate := make(map[string][]models.ShiftAssignment)
	for _, a := range assignments {
		key := a.WorkDate.Format(config.DATE_PARSE_FORMAT)
		byDate[key] = append(byDate[key], a)
	}
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i).Format(config.DATE_PARSE_FORMAT)
		day := WeekGridDay{Date: date, Slots: make(map[types.ShiftSlot][]models.ShiftAssignment)}
		for _, slot := range types.ShiftSlots {
			day.Slots[slot] = []models.ShiftAssignment{}
		}
		for _, a := range byDate[date] {
			day.Slots[a.ShiftSlot] = append(day.Slots[a.ShiftSlot], a)
		}
		grid.Days = append(grid.Days, day)
	}
	return grid
}

// ListShiftsForWeek projects one week of assignments for a shop or a single
// employee into the 7x3 grid.
func ListShiftsForWeek(shopId uint, employeeId uint, weekStart time.Time) (*WeekGrid, error) {
	dbi := db.GetDb()
	weekEnd := weekStart.AddDate(0, 0, 7)
	q := dbi.
		Model(&models.ShiftAssignment{}).
		Where("work_date >= ? AND work_date < ?", weekStart, weekEnd).
		Preload("Employee").
		Preload("Employee.User")
	if employeeId > 0 {
		q = q.Where("employee_id = ?", employeeId)
	} else {
		q = q.Where("shop_id = ?", shopId)
	}
	var assignments []models.ShiftAssignment
	if err := q.Order("work_date asc").Find(&assignments).Error; err != nil {
		return nil, err
	}
	grid := BuildWeekGrid(weekStart, assignments)
	return &grid, nil
}
