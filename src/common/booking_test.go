package common

import (
	"regexp"
	"testing"
	"time"

	"pbs/src/config"
	"pbs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func futureTimestamp() string {
	return time.Now().Add(48 * time.Hour).Format(config.TIME_PARSE_FORMAT)
}

func TestCreateBookingValidation(t *testing.T) {
	actor := types.Actor{ID: 1, Role: types.ROLE_CUSTOMER}

	t.Run("rejects malformed timestamp", func(t *testing.T) {
		_, err := CreateBooking(&types.CreateBookingRequestBody{
			ShopID:      1,
			ScheduledAt: "not-a-time",
			Pets: []types.BookingPetRequest{
				{Name: "Mochi", PetTypeID: 1, Services: []types.BookingServiceLineRequest{{ShopServiceID: 1}}},
			},
		}, actor, "")
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
	})

	t.Run("rejects a scheduled time in the past", func(t *testing.T) {
		past := time.Now().Add(-time.Hour).Format(config.TIME_PARSE_FORMAT)
		_, err := CreateBooking(&types.CreateBookingRequestBody{
			ShopID:      1,
			ScheduledAt: past,
			Pets: []types.BookingPetRequest{
				{Name: "Mochi", PetTypeID: 1, Services: []types.BookingServiceLineRequest{{ShopServiceID: 1}}},
			},
		}, actor, "")
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
	})

	t.Run("rejects a booking with no pets", func(t *testing.T) {
		_, err := CreateBooking(&types.CreateBookingRequestBody{
			ShopID:      1,
			ScheduledAt: futureTimestamp(),
		}, actor, "")
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
	})

	t.Run("rejects a pet with no service lines", func(t *testing.T) {
		_, err := CreateBooking(&types.CreateBookingRequestBody{
			ShopID:      1,
			ScheduledAt: futureTimestamp(),
			Pets:        []types.BookingPetRequest{{Name: "Mochi", PetTypeID: 1}},
		}, actor, "")
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
	})
}

func TestSnapshotBookingPets(t *testing.T) {
	prices := map[uint]float64{1: 30, 2: 45.5}
	pets := []types.BookingPetRequest{
		{Name: "Mochi", PetTypeID: 1, Services: []types.BookingServiceLineRequest{{ShopServiceID: 1}, {ShopServiceID: 2}}},
		{Name: "Biscuit", PetTypeID: 2, Services: []types.BookingServiceLineRequest{{ShopServiceID: 1}}},
	}

	snapped, total, err := snapshotBookingPets(pets, prices, 1)
	assert.NoError(t, err)
	assert.Equal(t, 105.5, total)
	assert.Len(t, snapped, 2)
	assert.Equal(t, 30.0, snapped[0].Services[0].PriceAtBooking)
	assert.Equal(t, 45.5, snapped[0].Services[1].PriceAtBooking)
	assert.Equal(t, 30.0, snapped[1].Services[0].PriceAtBooking)

	// a later catalog edit leaves the snapshotted prices untouched
	prices[1] = 99
	prices[2] = 99
	assert.Equal(t, 30.0, snapped[0].Services[0].PriceAtBooking)
	assert.Equal(t, 45.5, snapped[0].Services[1].PriceAtBooking)
	assert.Equal(t, 30.0, snapped[1].Services[0].PriceAtBooking)

	_, _, err = snapshotBookingPets([]types.BookingPetRequest{
		{Name: "Mochi", PetTypeID: 1, Services: []types.BookingServiceLineRequest{{ShopServiceID: 42}}},
	}, prices, 1)
	derr, ok := err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
}

func TestConfirmBookingPaymentAlreadySettled(t *testing.T) {
	owner := types.Actor{ID: 7, Role: types.ROLE_CUSTOMER}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "shop_id", "status", "payment_status", "version"}).
			AddRow(5, 2, 1, "completed", "paid", 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","owner_id" FROM "shops"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).AddRow(1, 7))
	mock.ExpectRollback()

	_, err := ConfirmBookingPayment(5, owner)
	derr, ok := err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_INVALID_TRANSITION, derr.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignTechnicianRequiresTechnicianRole(t *testing.T) {
	owner := types.Actor{ID: 7, Role: types.ROLE_CUSTOMER}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "shop_id", "status", "version"}).
			AddRow(5, 2, 1, "confirmed", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","owner_id" FROM "shops"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).AddRow(1, 7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "employees"`) + `.*` + regexp.QuoteMeta(`role IN`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := AssignTechnician(5, 9, owner)
	derr, ok := err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_NOT_ELIGIBLE, derr.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceBookingStatusRejectsUnknownTarget(t *testing.T) {
	actor := types.Actor{ID: 1, Role: types.ROLE_CUSTOMER}
	_, err := AdvanceBookingStatus(1, types.BookingStatus("archived"), actor)
	derr, ok := err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_VALIDATION, derr.Kind)

	// pending_confirmation is a starting state, never a target
	_, err = AdvanceBookingStatus(1, types.BOOKING_PENDING_CONFIRMATION, actor)
	derr, ok = err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
}
