package common

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"pbs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestSubmitReceiptRequiresReference(t *testing.T) {
	actor := types.Actor{ID: 1, Role: types.ROLE_CUSTOMER}
	_, err := SubmitReceipt(1, "", actor)
	derr, ok := err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
}

// currentInstant matches a bound query argument within a second of now.
type currentInstant struct{}

func (currentInstant) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	diff := time.Since(ts)
	return diff > -time.Second && diff < time.Second
}

func expectActiveCheck(count int64) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "subscription_payments" SET`) + `.*` + regexp.QuoteMeta(`period_end < $`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "subscription_payments"`) + `.*` + regexp.QuoteMeta(`period_end >= $`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
	mock.ExpectCommit()
}

func TestIsShopActive(t *testing.T) {
	t.Run("covered window reads active", func(t *testing.T) {
		expectActiveCheck(1)
		active, err := IsShopActive(1)
		assert.NoError(t, err)
		assert.True(t, active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no covering subscription reads inactive", func(t *testing.T) {
		expectActiveCheck(0)
		active, err := IsShopActive(1)
		assert.NoError(t, err)
		assert.False(t, active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gate compares period_end against the current instant", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "subscription_payments" SET`)+`.*`+regexp.QuoteMeta(`period_end < $`)).
			WithArgs(string(types.SUBSCRIPTION_EXPIRED), sqlmock.AnyArg(), uint(1), string(types.SUBSCRIPTION_TRIAL), string(types.SUBSCRIPTION_CONFIRMED), currentInstant{}).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "subscription_payments"`)+`.*`+regexp.QuoteMeta(`period_end >= $`)).
			WithArgs(uint(1), string(types.SUBSCRIPTION_TRIAL), string(types.SUBSCRIPTION_CONFIRMED), currentInstant{}).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectCommit()

		active, err := IsShopActive(1)
		assert.NoError(t, err)
		assert.True(t, active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
