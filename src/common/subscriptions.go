package common

import (
	"log"
	"time"

	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/models"
	"pbs/src/types"

	"gorm.io/gorm"
)

var activeSubscriptionStatuses = []types.SubscriptionStatus{
	types.SUBSCRIPTION_TRIAL,
	types.SUBSCRIPTION_CONFIRMED,
}

// IsShopActive is the single gate for shop visibility and booking intake:
// true iff a trial or confirmed subscription covers the current instant.
// Expiry is checked lazily here, not by a background clock.
func IsShopActive(shopId uint) (bool, error) {
	dbi := db.GetDb()
	var active bool
	err := dbi.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		expireStaleSubscriptions(tx, shopId, now)
		ok, err := isShopActiveTx(tx, shopId, now)
		if err != nil {
			return err
		}
		active = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

func isShopActiveTx(tx *gorm.DB, shopId uint, now time.Time) (bool, error) {
	var count int64
	err := tx.
		Model(&models.SubscriptionPayment{}).
		Where("shop_id = ?", shopId).
		Where("status IN (?)", activeSubscriptionStatuses).
		Where("period_end >= ?", now).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// expireStaleSubscriptions is the write-behind half of lazy expiry: rows
// whose window has passed get flipped to expired on the read path.
func expireStaleSubscriptions(tx *gorm.DB, shopId uint, now time.Time) {
	err := tx.
		Model(&models.SubscriptionPayment{}).
		Where("shop_id = ?", shopId).
		Where("status IN (?)", activeSubscriptionStatuses).
		Where("period_end < ?", now).
		Update("status", types.SUBSCRIPTION_EXPIRED).
		Error
	if err != nil {
		log.Printf("Error expiring stale subscriptions for shop %d: %s\n", shopId, err.Error())
	}
}

// UpdateExpiredSubscriptions sweeps all shops. Hygiene only; the read-path
// lazy check remains the authoritative gate.
func UpdateExpiredSubscriptions() {
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.SubscriptionPayment{}).
			Where("status IN (?)", activeSubscriptionStatuses).
			Where("period_end < ?", time.Now()).
			Update("status", types.SUBSCRIPTION_EXPIRED).
			Error
	})
	if err != nil {
		log.Printf("Error while processing expired subscriptions: %s\n", err.Error())
	}
}

// PurchaseSubscription opens an unpaid ledger record for a package. The
// period window stays empty until an admin confirms the payment. Only one
// unresolved record per shop may exist at a time.
func PurchaseSubscription(shopId uint, packageId uint, actor types.Actor, idempotencyKey string) (*models.SubscriptionPayment, error) {
	if idempotencyKey != "" {
		if id, ok := lib.LookupIdempotencyKey("subscription", idempotencyKey); ok {
			return GetSubscriptionPayment(id)
		}
	}

	payment := models.SubscriptionPayment{
		ShopID:    shopId,
		PackageID: &packageId,
		Status:    types.SUBSCRIPTION_UNPAID,
	}
	if idempotencyKey != "" {
		payment.IdempotencyKey = &idempotencyKey
	}
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		role, ok, err := ShopRoleOf(tx, shopId, actor.ID)
		if err != nil {
			return notFoundAs(err, types.ErrNotFound("shop not found"))
		}
		if !ok || role != types.EMPLOYEE_OWNER {
			return types.ErrForbidden("subscription purchase requires the shop owner")
		}
		var pkg models.PaymentPackage
		if err := tx.
			Model(&models.PaymentPackage{}).
			Where(&models.PaymentPackage{ID: packageId, Active: true}).
			First(&pkg).
			Error; err != nil {
			return notFoundAs(err, types.ErrValidation("unknown payment package"))
		}
		payment.Amount = pkg.Price

		var unresolved int64
		if err := tx.
			Model(&models.SubscriptionPayment{}).
			Where("shop_id = ?", shopId).
			Where("status IN (?)", []types.SubscriptionStatus{types.SUBSCRIPTION_UNPAID, types.SUBSCRIPTION_PENDING_CONFIRMATION}).
			Count(&unresolved).
			Error; err != nil {
			return err
		}
		if unresolved > 0 {
			return types.ErrConflict("shop already has an unresolved subscription payment")
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		if isDuplicateKey(err) && idempotencyKey != "" {
			return getSubscriptionByIdempotencyKey(idempotencyKey)
		}
		return nil, err
	}
	if idempotencyKey != "" {
		lib.ClaimIdempotencyKey("subscription", idempotencyKey, payment.ID)
	}
	return &payment, nil
}

// SubmitReceipt attaches an externally stored proof-of-payment reference and
// raises the payment_confirmation approval request for admin review.
func SubmitReceipt(paymentId uint, receiptRef string, actor types.Actor) (*models.SubscriptionPayment, error) {
	if receiptRef == "" {
		return nil, types.ErrValidation("receipt_ref is required")
	}
	var payment models.SubscriptionPayment
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.SubscriptionPayment{}).
			Where(&models.SubscriptionPayment{ID: paymentId}).
			First(&payment).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotFound("subscription payment not found"))
		}
		role, ok, err := ShopRoleOf(tx, payment.ShopID, actor.ID)
		if err != nil {
			return err
		}
		if !ok || role != types.EMPLOYEE_OWNER {
			return types.ErrForbidden("receipt submission requires the shop owner")
		}
		switch payment.Status {
		case types.SUBSCRIPTION_UNPAID:
		case types.SUBSCRIPTION_PENDING_CONFIRMATION:
			return types.ErrConflict("a receipt is already awaiting review for this payment")
		default:
			return types.ErrInvalidTransition("payment is already resolved")
		}

		var pending int64
		if err := tx.
			Model(&models.SubscriptionPayment{}).
			Where("shop_id = ? AND id <> ?", payment.ShopID, payment.ID).
			Where("status = ?", types.SUBSCRIPTION_PENDING_CONFIRMATION).
			Count(&pending).
			Error; err != nil {
			return err
		}
		if pending > 0 {
			return types.ErrConflict("shop already has a payment awaiting review")
		}

		res := tx.
			Model(&models.SubscriptionPayment{}).
			Where("id = ? AND version = ?", payment.ID, payment.Version).
			Updates(map[string]any{
				"status":      types.SUBSCRIPTION_PENDING_CONFIRMATION,
				"receipt_ref": receiptRef,
				"version":     payment.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrConflict("payment was modified concurrently; refresh and retry")
		}
		payment.Status = types.SUBSCRIPTION_PENDING_CONFIRMATION
		payment.ReceiptRef = &receiptRef
		payment.Version++

		request := models.ApprovalRequest{
			Kind:        types.APPROVAL_PAYMENT_CONFIRMATION,
			TargetID:    payment.ID,
			SubmitterID: actor.ID,
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// resolveSubscriptionPayment applies an admin decision. On approval the
// entitlement window starts at resolution time, not purchase time.
func resolveSubscriptionPayment(tx *gorm.DB, paymentId uint, reviewerId uint, approve bool, reason string, now time.Time) (*models.SubscriptionPayment, error) {
	var payment models.SubscriptionPayment
	if err := tx.
		Model(&models.SubscriptionPayment{}).
		Where(&models.SubscriptionPayment{ID: paymentId}).
		First(&payment).
		Error; err != nil {
		return nil, notFoundAs(err, types.ErrNotFound("subscription payment not found"))
	}
	if payment.Status != types.SUBSCRIPTION_PENDING_CONFIRMATION {
		return nil, types.ErrAlreadyResolved("subscription payment is not awaiting review")
	}

	updates := map[string]any{
		"reviewer_id": reviewerId,
		"resolved_at": now,
		"version":     payment.Version + 1,
	}
	if approve {
		if payment.PackageID == nil {
			return nil, types.ErrValidation("payment has no package to confirm")
		}
		var pkg models.PaymentPackage
		if err := tx.
			Model(&models.PaymentPackage{}).
			Where(&models.PaymentPackage{ID: *payment.PackageID}).
			First(&pkg).
			Error; err != nil {
			return nil, notFoundAs(err, types.ErrValidation("unknown payment package"))
		}
		periodEnd := now.AddDate(0, 0, int(pkg.DurationDays))
		updates["status"] = types.SUBSCRIPTION_CONFIRMED
		updates["period_start"] = now
		updates["period_end"] = periodEnd
		payment.Status = types.SUBSCRIPTION_CONFIRMED
		payment.PeriodStart = &now
		payment.PeriodEnd = &periodEnd
	} else {
		if reason == "" {
			return nil, types.ErrValidation("rejection requires a reason")
		}
		updates["status"] = types.SUBSCRIPTION_REJECTED
		updates["rejection_reason"] = reason
		payment.Status = types.SUBSCRIPTION_REJECTED
		payment.RejectionReason = &reason
	}
	res := tx.
		Model(&models.SubscriptionPayment{}).
		Where("id = ? AND version = ?", payment.ID, payment.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.ErrConflict("payment was modified concurrently; refresh and retry")
	}
	payment.ReviewerID = &reviewerId
	payment.ResolvedAt = &now
	payment.Version++
	return &payment, nil
}

// startTrial opens the introductory entitlement window for a freshly
// approved shop.
func startTrial(tx *gorm.DB, shopId uint, now time.Time) error {
	periodEnd := now.AddDate(0, 0, config.TrialDays())
	trial := models.SubscriptionPayment{
		ShopID:      shopId,
		Status:      types.SUBSCRIPTION_TRIAL,
		PeriodStart: &now,
		PeriodEnd:   &periodEnd,
	}
	return tx.Create(&trial).Error
}

func GetSubscriptionPayment(id uint) (*models.SubscriptionPayment, error) {
	var payment models.SubscriptionPayment
	dbi := db.GetDb()
	if err := dbi.
		Model(&models.SubscriptionPayment{}).
		Where(&models.SubscriptionPayment{ID: id}).
		Preload("Package").
		First(&payment).
		Error; err != nil {
		return nil, notFoundAs(err, types.ErrNotFound("subscription payment not found"))
	}
	return &payment, nil
}

// GetShopLedger lists a shop's subscription history, newest first, after a
// lazy expiry pass.
func GetShopLedger(shopId uint, actor types.Actor) ([]models.SubscriptionPayment, error) {
	dbi := db.GetDb()
	var payments []models.SubscriptionPayment
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if actor.Role != types.ROLE_ADMIN {
			role, ok, err := ShopRoleOf(tx, shopId, actor.ID)
			if err != nil {
				return err
			}
			if !ok || role != types.EMPLOYEE_OWNER {
				return types.ErrForbidden("ledger access requires the shop owner or an admin")
			}
		}
		expireStaleSubscriptions(tx, shopId, time.Now())
		return tx.
			Model(&models.SubscriptionPayment{}).
			Where(&models.SubscriptionPayment{ShopID: shopId}).
			Preload("Package").
			Order("created_at desc").
			Find(&payments).
			Error
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func getSubscriptionByIdempotencyKey(key string) (*models.SubscriptionPayment, error) {
	var payment models.SubscriptionPayment
	dbi := db.GetDb()
	if err := dbi.
		Model(&models.SubscriptionPayment{}).
		Where("idempotency_key = ?", key).
		First(&payment).
		Error; err != nil {
		return nil, notFoundAs(err, types.ErrNotFound("subscription payment not found"))
	}
	return &payment, nil
}
