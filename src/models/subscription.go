package models

import (
	"log"
	"time"

	"pbs/src/lib"
	"pbs/src/types"
)

type PaymentPackage struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DurationDays uint    `json:"duration_days"`
	Active       bool    `gorm:"default:true" json:"active,omitempty"`

	types.Timestamps
}

// SubscriptionPayment is one shop's purchase of a payment package. The
// period window is set only when an admin confirms the payment; until then
// the record has no active window. Confirmed rows expire lazily once
// period_end passes.
type SubscriptionPayment struct {
	ID              uint                     `gorm:"primarykey" json:"id"`
	ShopID          uint                     `json:"shop_id,omitempty"`
	PackageID       *uint                    `json:"package_id,omitempty"`
	Amount          float64                  `json:"amount"`
	PeriodStart     *time.Time               `json:"period_start,omitempty"`
	PeriodEnd       *time.Time               `json:"period_end,omitempty"`
	Status          types.SubscriptionStatus `gorm:"default:'unpaid'" json:"status,omitempty"`
	ReceiptRef      *string                  `json:"receipt_ref,omitempty"`
	RejectionReason *string                  `json:"rejection_reason,omitempty"`
	ReviewerID      *uint                    `json:"reviewer_id,omitempty"`
	ResolvedAt      *time.Time               `json:"resolved_at,omitempty"`
	Version         uint                     `gorm:"default:1" json:"version"`
	IdempotencyKey  *string                  `gorm:"uniqueIndex" json:"-"`

	Shop     Shop            `gorm:"foreignKey:shop_id" json:"-"`
	Package  *PaymentPackage `gorm:"foreignKey:package_id" json:"package,omitempty"`
	Reviewer *User           `gorm:"foreignKey:reviewer_id" json:"-"`

	types.Timestamps
}

func PaymentResolvedProducer(id uint, payload types.JSONB) error {
	err := lib.KafkaProduceMessage("payments_resolved_producer", "payments-resolved", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
