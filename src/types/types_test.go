package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingTransitions(t *testing.T) {
	t.Run("forward path moves one step at a time", func(t *testing.T) {
		assert.True(t, CanTransitionBooking(BOOKING_PENDING_CONFIRMATION, BOOKING_CONFIRMED))
		assert.True(t, CanTransitionBooking(BOOKING_CONFIRMED, BOOKING_IN_PROGRESS))
		assert.True(t, CanTransitionBooking(BOOKING_IN_PROGRESS, BOOKING_COMPLETED))
	})

	t.Run("no skipping or reversing", func(t *testing.T) {
		assert.False(t, CanTransitionBooking(BOOKING_PENDING_CONFIRMATION, BOOKING_IN_PROGRESS))
		assert.False(t, CanTransitionBooking(BOOKING_PENDING_CONFIRMATION, BOOKING_COMPLETED))
		assert.False(t, CanTransitionBooking(BOOKING_CONFIRMED, BOOKING_COMPLETED))
		assert.False(t, CanTransitionBooking(BOOKING_CONFIRMED, BOOKING_PENDING_CONFIRMATION))
		assert.False(t, CanTransitionBooking(BOOKING_IN_PROGRESS, BOOKING_CONFIRMED))
		assert.False(t, CanTransitionBooking(BOOKING_COMPLETED, BOOKING_IN_PROGRESS))
	})

	t.Run("cancellation only from non-terminal pre-progress states", func(t *testing.T) {
		assert.True(t, CanTransitionBooking(BOOKING_PENDING_CONFIRMATION, BOOKING_CANCELLED))
		assert.True(t, CanTransitionBooking(BOOKING_CONFIRMED, BOOKING_CANCELLED))
		assert.False(t, CanTransitionBooking(BOOKING_IN_PROGRESS, BOOKING_CANCELLED))
		assert.False(t, CanTransitionBooking(BOOKING_COMPLETED, BOOKING_CANCELLED))
		assert.False(t, CanTransitionBooking(BOOKING_CANCELLED, BOOKING_CANCELLED))
	})

	t.Run("terminal states accept nothing", func(t *testing.T) {
		for _, target := range []BookingStatus{BOOKING_PENDING_CONFIRMATION, BOOKING_CONFIRMED, BOOKING_IN_PROGRESS, BOOKING_COMPLETED, BOOKING_CANCELLED} {
			assert.False(t, CanTransitionBooking(BOOKING_COMPLETED, target))
			assert.False(t, CanTransitionBooking(BOOKING_CANCELLED, target))
		}
	})
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.True(t, BOOKING_COMPLETED.Terminal())
	assert.True(t, BOOKING_CANCELLED.Terminal())
	assert.False(t, BOOKING_PENDING_CONFIRMATION.Terminal())
	assert.False(t, BOOKING_CONFIRMED.Terminal())
	assert.False(t, BOOKING_IN_PROGRESS.Terminal())
}

func TestShiftSlotWindow(t *testing.T) {
	start, end, ok := ShiftSlotWindow(SHIFT_MORNING)
	assert.True(t, ok)
	assert.Equal(t, 8, start)
	assert.Equal(t, 12, end)

	start, end, ok = ShiftSlotWindow(SHIFT_AFTERNOON)
	assert.True(t, ok)
	assert.Equal(t, 12, start)
	assert.Equal(t, 17, end)

	start, end, ok = ShiftSlotWindow(SHIFT_EVENING)
	assert.True(t, ok)
	assert.Equal(t, 17, start)
	assert.Equal(t, 21, end)

	_, _, ok = ShiftSlotWindow(ShiftSlot("night"))
	assert.False(t, ok)
}

func TestJSONB(t *testing.T) {
	payload := JSONB{"name": "Full Groom", "description": "wash and trim"}
	value, err := payload.Value()
	assert.NoError(t, err)

	var decoded JSONB
	assert.NoError(t, decoded.Scan([]byte(value.(string))))
	assert.Equal(t, "Full Groom", decoded["name"])
	assert.Equal(t, "wash and trim", decoded["description"])

	assert.Error(t, decoded.Scan(42))
}

func TestDomainError(t *testing.T) {
	err := ErrDuplicateAssignment("slot already taken")
	assert.Equal(t, ERR_DUPLICATE_ASSIGNMENT, err.Kind)
	assert.Equal(t, "slot already taken", err.Error())

	assert.Equal(t, ERR_CONFLICT, ErrConflict("x").Kind)
	assert.Equal(t, ERR_FORBIDDEN, ErrForbidden("x").Kind)
	assert.Equal(t, ERR_INVALID_TRANSITION, ErrInvalidTransition("x").Kind)
	assert.Equal(t, ERR_NOT_ELIGIBLE, ErrNotEligible("x").Kind)
	assert.Equal(t, ERR_ALREADY_RESOLVED, ErrAlreadyResolved("x").Kind)
	assert.Equal(t, ERR_VALIDATION, ErrValidation("x").Kind)
	assert.Equal(t, ERR_NOT_FOUND, ErrNotFound("x").Kind)
}
