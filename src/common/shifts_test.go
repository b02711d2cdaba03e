package common

import (
	"regexp"
	"testing"
	"time"

	"pbs/src/models"
	"pbs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAssignShiftValidation(t *testing.T) {
	actor := types.Actor{ID: 1, Role: types.ROLE_CUSTOMER}

	t.Run("rejects malformed work date", func(t *testing.T) {
		_, err := AssignShift(1, &types.AssignShiftRequestBody{
			EmployeeID: 1,
			ShiftSlot:  "morning",
			WorkDate:   "03/10/2026",
		}, actor)
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
	})

	t.Run("rejects unknown slot", func(t *testing.T) {
		_, err := AssignShift(1, &types.AssignShiftRequestBody{
			EmployeeID: 1,
			ShiftSlot:  "night",
			WorkDate:   "2026-03-10",
		}, actor)
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
	})
}

func TestAssignShiftRejectsTakenSlot(t *testing.T) {
	owner := types.Actor{ID: 7, Role: types.ROLE_CUSTOMER}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","owner_id" FROM "shops"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).AddRow(1, 7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "employees"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "shop_id", "user_id", "role", "active"}).
			AddRow(3, 1, 8, "technician", true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "shift_assignments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := AssignShift(1, &types.AssignShiftRequestBody{
		EmployeeID: 3,
		ShiftSlot:  "morning",
		WorkDate:   "2026-03-10",
	}, owner)
	derr, ok := err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_DUPLICATE_ASSIGNMENT, derr.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkAssignShiftsReportsPerEntry(t *testing.T) {
	actor := types.Actor{ID: 1, Role: types.ROLE_CUSTOMER}
	entries := []types.AssignShiftRequestBody{
		{EmployeeID: 1, ShiftSlot: "night", WorkDate: "2026-03-10"},
		{EmployeeID: 2, ShiftSlot: "morning", WorkDate: "not-a-date"},
	}
	results := BulkAssignShifts(1, entries, actor)
	assert.Len(t, results, 2)
	for i, result := range results {
		assert.Equal(t, i, result.Index)
		assert.Nil(t, result.AssignmentID)
		assert.Equal(t, types.ERR_VALIDATION, result.ErrorKind)
		assert.NotEmpty(t, result.Message)
	}
}

func TestBuildWeekGrid(t *testing.T) {
	weekStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) // a Monday
	assignments := []models.ShiftAssignment{
		{ID: 1, EmployeeID: 10, ShiftSlot: types.SHIFT_MORNING, WorkDate: weekStart},
		{ID: 2, EmployeeID: 11, ShiftSlot: types.SHIFT_MORNING, WorkDate: weekStart},
		{ID: 3, EmployeeID: 10, ShiftSlot: types.SHIFT_EVENING, WorkDate: weekStart.AddDate(0, 0, 3)},
	}

	grid := BuildWeekGrid(weekStart, assignments)

	assert.Equal(t, "2026-03-09", grid.WeekStart)
	assert.Len(t, grid.Days, 7)
	for _, day := range grid.Days {
		assert.Len(t, day.Slots, 3)
	}

	monday := grid.Days[0]
	assert.Equal(t, "2026-03-09", monday.Date)
	assert.Len(t, monday.Slots[types.SHIFT_MORNING], 2)
	assert.Empty(t, monday.Slots[types.SHIFT_AFTERNOON])
	assert.Empty(t, monday.Slots[types.SHIFT_EVENING])

	thursday := grid.Days[3]
	assert.Equal(t, "2026-03-12", thursday.Date)
	assert.Len(t, thursday.Slots[types.SHIFT_EVENING], 1)
	assert.Equal(t, uint(3), thursday.Slots[types.SHIFT_EVENING][0].ID)
}

func TestBuildWeekGridEmpty(t *testing.T) {
	weekStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	grid := BuildWeekGrid(weekStart, nil)
	assert.Len(t, grid.Days, 7)
	for _, day := range grid.Days {
		for _, slot := range types.ShiftSlots {
			assert.NotNil(t, day.Slots[slot])
			assert.Empty(t, day.Slots[slot])
		}
	}
}
