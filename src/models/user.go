package models

import "pbs/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	UID   string `json:"uid,omitempty"`
	Role  string `gorm:"default:'customer'" json:"role,omitempty"`

	types.Timestamps
}
