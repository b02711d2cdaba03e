package models

import "pbs/src/types"

type Shop struct {
	ID           uint             `gorm:"primarykey;uniqueIndex:slugid" json:"id"`
	Name         string           `json:"name,omitempty"`
	About        string           `json:"about,omitempty"`
	Address      string           `json:"address,omitempty"`
	ContactEmail string           `json:"email,omitempty"`
	OwnerID      uint             `json:"owner_id,omitempty"`
	Status       types.ShopStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Visible      bool             `gorm:"default:false" json:"visible,omitempty"`
	Slug         string           `gorm:"uniqueIndex:slugid" json:"slug"`

	Owner     User              `gorm:"foreignKey:owner_id" json:"-"`
	Employees []Employee        `json:"employees,omitempty"`
	Services  []ShopService     `json:"services,omitempty"`
	Bookings  []Booking         `json:"-"`
	Shifts    []ShiftAssignment `json:"-"`

	types.Timestamps
}

type Employee struct {
	ID     uint               `gorm:"primarykey" json:"id"`
	ShopID uint               `gorm:"uniqueIndex:shopuser" json:"shop_id,omitempty"`
	UserID uint               `gorm:"uniqueIndex:shopuser" json:"user_id,omitempty"`
	Role   types.EmployeeRole `json:"role,omitempty"`
	Active bool               `gorm:"default:true" json:"active,omitempty"`

	Shop Shop `gorm:"foreignKey:shop_id" json:"-"`
	User User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
