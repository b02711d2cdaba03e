package models

import (
	"log"
	"time"

	"pbs/src/lib"
	"pbs/src/types"
)

// ApprovalRequest is the shared pending/approved/rejected workflow used by
// shop registration, service proposals, and payment confirmation. Once
// resolved the row is immutable; resolution records reviewer and timestamp.
type ApprovalRequest struct {
	ID              uint                 `gorm:"primarykey" json:"id"`
	Kind            types.ApprovalKind   `json:"kind"`
	TargetID        uint                 `json:"target_id"`
	SubmitterID     uint                 `json:"submitter_id,omitempty"`
	Status          types.ApprovalStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ReviewerID      *uint                `json:"reviewer_id,omitempty"`
	ResolvedAt      *time.Time           `json:"resolved_at,omitempty"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	Payload         types.JSONB          `gorm:"type:jsonb" json:"payload,omitempty"`
	Version         uint                 `gorm:"default:1" json:"version"`

	Submitter User  `gorm:"foreignKey:submitter_id" json:"-"`
	Reviewer  *User `gorm:"foreignKey:reviewer_id" json:"-"`

	types.Timestamps
}

func ShopApprovedProducer(id uint, payload types.JSONB) error {
	err := lib.KafkaProduceMessage("shops_approved_producer", "shops-approved", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
