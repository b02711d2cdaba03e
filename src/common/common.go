package common

import (
	"errors"
	"strings"

	"pbs/src/models"
	"pbs/src/types"

	"gorm.io/gorm"
)

// ShopRoleOf resolves the actor's role within a shop from the employee
// roster. The shop owner resolves to owner even without an employee row.
func ShopRoleOf(tx *gorm.DB, shopId uint, userId uint) (types.EmployeeRole, bool, error) {
	var shop models.Shop
	if err := tx.
		Model(&models.Shop{}).
		Select("id", "owner_id").
		Where(&models.Shop{ID: shopId}).
		First(&shop).
		Error; err != nil {
		return "", false, err
	}
	if shop.OwnerID == userId {
		return types.EMPLOYEE_OWNER, true, nil
	}
	var employee models.Employee
	err := tx.
		Model(&models.Employee{}).
		Where(&models.Employee{ShopID: shopId, UserID: userId, Active: true}).
		First(&employee).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return employee.Role, true, nil
}

// requireShopStaff checks that the actor is staff or owner of the shop.
func requireShopStaff(tx *gorm.DB, shopId uint, actor types.Actor) error {
	role, ok, err := ShopRoleOf(tx, shopId, actor.ID)
	if err != nil {
		return err
	}
	if !ok || (role != types.EMPLOYEE_OWNER && role != types.EMPLOYEE_STAFF) {
		return types.ErrForbidden("operation requires shop staff or owner")
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}

func notFoundAs(err error, domainErr *types.DomainError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
