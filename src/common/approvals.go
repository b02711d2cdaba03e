package common

import (
	"fmt"
	"time"

	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/models/scopes"
	"pbs/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// SubmitShopRegistration creates the shop in pending state plus the
// shop_registration approval request an admin will resolve.
func SubmitShopRegistration(params *types.RegisterShopRequestBody, actor types.Actor) (*models.Shop, error) {
	shop := models.Shop{
		Name:         params.Name,
		About:        params.About,
		Address:      params.Address,
		ContactEmail: params.ContactEmail,
		OwnerID:      actor.ID,
		Status:       types.SHOP_PENDING,
		Slug:         slug.Make(params.Name),
	}
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.
			Model(&models.Shop{}).
			Where(&models.Shop{OwnerID: actor.ID, Status: types.SHOP_PENDING}).
			Count(&pending).
			Error; err != nil {
			return err
		}
		if pending > 0 {
			return types.ErrConflict("a shop registration is already awaiting review")
		}
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Shop{}).
			Where("id = ?", shop.ID).
			Updates(&models.Shop{Slug: fmt.Sprintf("%s-%d", shop.Slug, shop.ID)}).
			Error; err != nil {
			return err
		}
		request := models.ApprovalRequest{
			Kind:        types.APPROVAL_SHOP_REGISTRATION,
			TargetID:    shop.ID,
			SubmitterID: actor.ID,
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// SubmitServiceProposal raises a service_proposal request. Approval creates
// a platform-owned ServiceDefinition, not a shop-scoped record.
func SubmitServiceProposal(shopId uint, params *types.ProposeServiceRequestBody, actor types.Actor) (*models.ApprovalRequest, error) {
	request := models.ApprovalRequest{
		Kind:        types.APPROVAL_SERVICE_PROPOSAL,
		TargetID:    shopId,
		SubmitterID: actor.ID,
		Payload: types.JSONB{
			"name":        params.Name,
			"description": params.Description,
		},
	}
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		role, ok, err := ShopRoleOf(tx, shopId, actor.ID)
		if err != nil {
			return notFoundAs(err, types.ErrNotFound("shop not found"))
		}
		if !ok || role != types.EMPLOYEE_OWNER {
			return types.ErrForbidden("service proposals require the shop owner")
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ResolveApproval applies an admin decision to a pending request and runs
// the per-kind side effect inside the same transaction. Resolved requests
// are immutable; a blank rejection reason leaves the request pending.
func ResolveApproval(requestId uint, reviewer types.Actor, approve bool, reason string) (*models.ApprovalRequest, error) {
	if reviewer.Role != types.ROLE_ADMIN {
		return nil, types.ErrForbidden("approval resolution requires an admin reviewer")
	}
	if !approve && reason == "" {
		return nil, types.ErrValidation("rejection requires a reason")
	}

	var request models.ApprovalRequest
	now := time.Now()
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.ApprovalRequest{}).
			Where(&models.ApprovalRequest{ID: requestId}).
			First(&request).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotFound("approval request not found"))
		}
		if request.Status != types.APPROVAL_PENDING {
			return types.ErrAlreadyResolved("request is already resolved")
		}

		status := types.APPROVAL_APPROVED
		if !approve {
			status = types.APPROVAL_REJECTED
		}
		updates := map[string]any{
			"status":      status,
			"reviewer_id": reviewer.ID,
			"resolved_at": now,
			"version":     request.Version + 1,
		}
		if !approve {
			updates["rejection_reason"] = reason
		}
		res := tx.
			Model(&models.ApprovalRequest{}).
			Where("id = ? AND version = ?", request.ID, request.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrConflict("request was modified concurrently; refresh and retry")
		}
		request.Status = status
		request.ReviewerID = &reviewer.ID
		request.ResolvedAt = &now
		request.Version++
		if !approve {
			request.RejectionReason = &reason
		}

		switch request.Kind {
		case types.APPROVAL_SHOP_REGISTRATION:
			return resolveShopRegistration(tx, &request, approve, reason, now)
		case types.APPROVAL_SERVICE_PROPOSAL:
			return resolveServiceProposal(tx, &request, approve)
		case types.APPROVAL_PAYMENT_CONFIRMATION:
			_, err := resolveSubscriptionPayment(tx, request.TargetID, reviewer.ID, approve, reason, now)
			return err
		default:
			return types.ErrValidation(fmt.Sprintf("unknown approval kind %q", request.Kind))
		}
	})
	if err != nil {
		return nil, err
	}

	switch request.Kind {
	case types.APPROVAL_SHOP_REGISTRATION:
		if approve {
			go models.ShopApprovedProducer(request.TargetID, types.JSONB{
				"shop":     request.TargetID,
				"reviewer": reviewer.ID,
			})
		}
	case types.APPROVAL_PAYMENT_CONFIRMATION:
		go models.PaymentResolvedProducer(request.TargetID, types.JSONB{
			"payment":  request.TargetID,
			"approved": approve,
			"reviewer": reviewer.ID,
		})
	}
	return &request, nil
}

// resolveShopRegistration toggles shop visibility and opens the trial window
// on approval.
func resolveShopRegistration(tx *gorm.DB, request *models.ApprovalRequest, approve bool, reason string, now time.Time) error {
	var shop models.Shop
	if err := tx.
		Model(&models.Shop{}).
		Where(&models.Shop{ID: request.TargetID}).
		First(&shop).
		Error; err != nil {
		return notFoundAs(err, types.ErrNotFound("shop not found"))
	}
	if shop.Status != types.SHOP_PENDING {
		return types.ErrAlreadyResolved("shop registration is already resolved")
	}
	if !approve {
		return tx.
			Model(&models.Shop{}).
			Where("id = ?", shop.ID).
			Updates(map[string]any{"status": types.SHOP_REJECTED, "visible": false}).
			Error
	}
	if err := tx.
		Model(&models.Shop{}).
		Where("id = ?", shop.ID).
		Updates(map[string]any{"status": types.SHOP_APPROVED, "visible": true}).
		Error; err != nil {
		return err
	}
	owner := models.Employee{
		ShopID: shop.ID,
		UserID: shop.OwnerID,
		Role:   types.EMPLOYEE_OWNER,
		Active: true,
	}
	if err := tx.Create(&owner).Error; err != nil && !isDuplicateKey(err) {
		return err
	}
	return startTrial(tx, shop.ID, now)
}

func resolveServiceProposal(tx *gorm.DB, request *models.ApprovalRequest, approve bool) error {
	if !approve {
		return nil
	}
	name, _ := request.Payload["name"].(string)
	description, _ := request.Payload["description"].(string)
	if name == "" {
		return types.ErrValidation("service proposal payload has no name")
	}
	definition := models.ServiceDefinition{
		Name:        name,
		Description: description,
	}
	return tx.Create(&definition).Error
}

// ListPendingApprovals returns the admin review queue, optionally filtered
// by kind.
func ListPendingApprovals(kind types.ApprovalKind, actor types.Actor) ([]models.ApprovalRequest, error) {
	if actor.Role != types.ROLE_ADMIN {
		return nil, types.ErrForbidden("review queue requires an admin")
	}
	dbi := db.GetDb()
	q := dbi.
		Model(&models.ApprovalRequest{}).
		Scopes(scopes.WithPendingStatus).
		Order("created_at asc")
	if kind != "" {
		q = q.Where(&models.ApprovalRequest{Kind: kind})
	}
	var requests []models.ApprovalRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
