package common

import (
	"testing"

	"pbs/src/types"

	"github.com/stretchr/testify/assert"
)

func TestResolveApprovalGuards(t *testing.T) {
	t.Run("non-admin reviewer is forbidden", func(t *testing.T) {
		actor := types.Actor{ID: 2, Role: types.ROLE_CUSTOMER}
		_, err := ResolveApproval(1, actor, true, "")
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_FORBIDDEN, derr.Kind)
	})

	t.Run("rejection without a reason is rejected before any write", func(t *testing.T) {
		admin := types.Actor{ID: 1, Role: types.ROLE_ADMIN}
		_, err := ResolveApproval(1, admin, false, "")
		derr, ok := err.(*types.DomainError)
		assert.True(t, ok)
		assert.Equal(t, types.ERR_VALIDATION, derr.Kind)
	})
}

func TestListPendingApprovalsRequiresAdmin(t *testing.T) {
	actor := types.Actor{ID: 2, Role: types.ROLE_CUSTOMER}
	_, err := ListPendingApprovals(types.APPROVAL_SHOP_REGISTRATION, actor)
	derr, ok := err.(*types.DomainError)
	assert.True(t, ok)
	assert.Equal(t, types.ERR_FORBIDDEN, derr.Kind)
}
