package main

import (
	"errors"
	"net/http"

	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func employeeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/shops/:id/employees", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.AddEmployeeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := utils.ActorFromContext(ctx)
			employee := models.Employee{
				ShopID: params.ID,
				UserID: body.UserID,
				Role:   types.EmployeeRole(body.Role),
				Active: true,
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				role, ok, err := common.ShopRoleOf(tx, params.ID, actor.ID)
				if err != nil {
					return err
				}
				if !ok || role != types.EMPLOYEE_OWNER {
					return types.ErrForbidden("roster changes require the shop owner")
				}
				var user models.User
				if err := tx.
					Model(&models.User{}).
					Where(&models.User{ID: body.UserID}).
					First(&user).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrValidation("unknown user")
					}
					return err
				}
				return tx.Create(&employee).Error
			})
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": employee})
		}).
		GET("/shops/:id/employees", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var employees []models.Employee
			if err := db.
				Model(&models.Employee{}).
				Where(&models.Employee{ShopID: params.ID, Active: true}).
				Preload("User").
				Find(&employees).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": employees, "count": len(employees)})
		}).
		DELETE("/employees/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			actor := utils.ActorFromContext(ctx)
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var employee models.Employee
				if err := tx.
					Model(&models.Employee{}).
					Where(&models.Employee{ID: params.ID}).
					First(&employee).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return types.ErrNotFound("employee not found")
					}
					return err
				}
				role, ok, err := common.ShopRoleOf(tx, employee.ShopID, actor.ID)
				if err != nil {
					return err
				}
				if !ok || role != types.EMPLOYEE_OWNER {
					return types.ErrForbidden("roster changes require the shop owner")
				}
				if employee.Role == types.EMPLOYEE_OWNER {
					return types.ErrValidation("the owner row cannot be removed")
				}
				return tx.
					Model(&models.Employee{}).
					Where("id = ?", employee.ID).
					Update("active", false).
					Error
			})
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
