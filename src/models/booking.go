package models

import (
	"log"
	"time"

	"pbs/src/lib"
	"pbs/src/types"
)

type Booking struct {
	ID                   uint                `gorm:"primarykey" json:"id"`
	CustomerID           uint                `json:"customer_id,omitempty"`
	ShopID               uint                `json:"shop_id,omitempty"`
	ScheduledAt          time.Time           `json:"scheduled_at,omitempty"`
	Note                 string              `json:"note,omitempty"`
	TotalAmount          float64             `json:"total_amount"`
	Status               types.BookingStatus `gorm:"default:'pending_confirmation'" json:"status,omitempty"`
	PaymentStatus        types.PaymentStatus `gorm:"default:'unpaid'" json:"payment_status,omitempty"`
	AssignedTechnicianID *uint               `json:"assigned_technician_id,omitempty"`
	Version              uint                `gorm:"default:1" json:"version"`
	IdempotencyKey       *string             `gorm:"uniqueIndex" json:"-"`

	Customer           User         `gorm:"foreignKey:customer_id" json:"-"`
	Shop               Shop         `gorm:"foreignKey:shop_id" json:"-"`
	AssignedTechnician *Employee    `gorm:"foreignKey:assigned_technician_id" json:"assigned_technician,omitempty"`
	Pets               []BookingPet `json:"pets,omitempty"`

	types.Timestamps
}

type BookingPet struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	BookingID uint   `json:"booking_id,omitempty"`
	Name      string `json:"name"`
	PetTypeID uint   `json:"pet_type_id,omitempty"`
	Age       *uint8 `json:"age,omitempty"`
	Notes     string `json:"notes,omitempty"`

	PetType  PetType              `gorm:"foreignKey:pet_type_id" json:"pet_type,omitempty"`
	Services []BookingServiceLine `json:"services,omitempty"`

	types.Timestamps
}

// BookingServiceLine captures the selected service and its price at booking
// time. PriceAtBooking is immutable once written.
type BookingServiceLine struct {
	ID             uint    `gorm:"primarykey" json:"id"`
	BookingPetID   uint    `json:"booking_pet_id,omitempty"`
	ShopServiceID  uint    `json:"shop_service_id,omitempty"`
	PriceAtBooking float64 `json:"price_at_booking"`

	ShopService ShopService `gorm:"foreignKey:shop_service_id" json:"shop_service,omitempty"`

	types.Timestamps
}

func BookingCreatedProducer(id uint, payload types.JSONB) error {
	err := lib.KafkaProduceMessage("bookings_created_producer", "bookings-created", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}

func BookingConfirmedProducer(id uint, payload types.JSONB) error {
	err := lib.KafkaProduceMessage("bookings_confirmed_producer", "bookings-confirmed", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
