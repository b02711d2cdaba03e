package main

import (
	"net/http"
	"strconv"

	"pbs/src/common"
	"pbs/src/types"
	"pbs/src/utils"

	"github.com/gin-gonic/gin"
)

func shiftHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/shops/:id/shifts", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.AssignShiftRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := utils.ActorFromContext(ctx)
			assignment, err := common.AssignShift(params.ID, &body, actor)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": assignment})
		}).
		POST("/shops/:id/shifts/bulk", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.BulkAssignShiftsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := utils.ActorFromContext(ctx)
			results := common.BulkAssignShifts(params.ID, body.Assignments, actor)
			ctx.JSON(http.StatusMultiStatus, gin.H{"data": results, "count": len(results)})
		}).
		DELETE("/shifts/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			actor := utils.ActorFromContext(ctx)
			if err := common.RemoveShift(params.ID, actor); err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/shops/:id/shifts", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			weekStart, err := utils.WeekStartOf(ctx.Query("week"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "week must be a date in 2006-01-02 format"})
				return
			}
			employeeId := uint(0)
			if v := ctx.Query("employee"); v != "" {
				atoi, err := strconv.Atoi(v)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "employee must be an id"})
					return
				}
				employeeId = uint(atoi)
			}
			grid, err := common.ListShiftsForWeek(params.ID, employeeId, weekStart)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": grid})
		})
	return g
}
