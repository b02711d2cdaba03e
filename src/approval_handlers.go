package main

import (
	"net/http"

	"pbs/src/common"
	"pbs/src/types"
	"pbs/src/utils"

	"github.com/gin-gonic/gin"
)

func approvalHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/approvals", func(ctx *gin.Context) {
			actor := utils.ActorFromContext(ctx)
			kind := types.ApprovalKind(ctx.Query("kind"))
			requests, err := common.ListPendingApprovals(kind, actor)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests, "count": len(requests)})
		}).
		PUT("/approvals/:id/approve", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			actor := utils.ActorFromContext(ctx)
			request, err := common.ResolveApproval(params.ID, actor, true, "")
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		}).
		PUT("/approvals/:id/reject", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.ResolveApprovalRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := utils.ActorFromContext(ctx)
			request, err := common.ResolveApproval(params.ID, actor, false, body.Reason)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		})
	return g
}
