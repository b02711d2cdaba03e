package models

import "pbs/src/types"

type PetType struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`

	types.Timestamps
}

// ServiceDefinition is a platform-owned catalog entry. New definitions are
// created when an admin approves a shop's service proposal.
type ServiceDefinition struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	types.Timestamps
}

// ShopService is one shop's priced offering of a catalog service. Bookings
// snapshot Price at creation time; later edits never touch existing bookings.
type ShopService struct {
	ID                  uint    `gorm:"primarykey" json:"id"`
	ShopID              uint    `json:"shop_id,omitempty"`
	ServiceDefinitionID uint    `json:"service_definition_id,omitempty"`
	Price               float64 `json:"price"`
	DurationMinutes     uint    `json:"duration_minutes,omitempty"`
	Active              bool    `gorm:"default:true" json:"active,omitempty"`

	Shop              Shop              `gorm:"foreignKey:shop_id" json:"-"`
	ServiceDefinition ServiceDefinition `gorm:"foreignKey:service_definition_id" json:"service_definition,omitempty"`

	types.Timestamps
}
