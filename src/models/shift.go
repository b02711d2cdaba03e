package models

import (
	"log"
	"time"

	"pbs/src/lib"
	"pbs/src/types"
)

// ShiftAssignment puts one employee into one named slot on one date. The
// (employee, slot, date) tuple is unique; rows are removed and recreated
// rather than updated in place.
type ShiftAssignment struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	ShopID     uint            `json:"shop_id,omitempty"`
	EmployeeID uint            `gorm:"uniqueIndex:slotdate" json:"employee_id,omitempty"`
	ShiftSlot  types.ShiftSlot `gorm:"uniqueIndex:slotdate" json:"shift_slot,omitempty"`
	WorkDate   time.Time       `gorm:"type:date;uniqueIndex:slotdate" json:"work_date,omitempty"`

	Shop     Shop     `gorm:"foreignKey:shop_id" json:"-"`
	Employee Employee `gorm:"foreignKey:employee_id" json:"employee,omitempty"`

	types.Timestamps
}

func ShiftAssignedProducer(id uint, payload types.JSONB) error {
	err := lib.KafkaProduceMessage("shifts_assigned_producer", "shifts-assigned", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
