package main

import (
	"net/http"

	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func shopHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/shops", func(ctx *gin.Context) {
			var body types.RegisterShopRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := utils.ActorFromContext(ctx)
			shop, err := common.SubmitShopRegistration(&body, actor)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": shop})
		}).
		GET("/shops/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var shop models.Shop
			if err := db.
				Model(&models.Shop{}).
				Where(&models.Shop{ID: params.ID}).
				Preload("Services").
				Preload("Services.ServiceDefinition").
				First(&shop).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": shop})
		}).
		POST("/shops/:id/services/propose", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.ProposeServiceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := utils.ActorFromContext(ctx)
			request, err := common.SubmitServiceProposal(params.ID, &body, actor)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": request})
		}).
		POST("/shops/:id/services", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body struct {
				ServiceDefinitionID uint    `json:"service_definition" binding:"required"`
				Price               float64 `json:"price" binding:"required,gte=0"`
				DurationMinutes     uint    `json:"duration_minutes,omitempty"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := utils.ActorFromContext(ctx)
			service := models.ShopService{
				ShopID:              params.ID,
				ServiceDefinitionID: body.ServiceDefinitionID,
				Price:               body.Price,
				DurationMinutes:     body.DurationMinutes,
				Active:              true,
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				role, ok, err := common.ShopRoleOf(tx, params.ID, actor.ID)
				if err != nil {
					return err
				}
				if !ok || role != types.EMPLOYEE_OWNER {
					return types.ErrForbidden("service pricing requires the shop owner")
				}
				var definition models.ServiceDefinition
				if err := tx.
					Model(&models.ServiceDefinition{}).
					Where(&models.ServiceDefinition{ID: body.ServiceDefinitionID}).
					First(&definition).
					Error; err != nil {
					return types.ErrValidation("unknown service definition")
				}
				return tx.Create(&service).Error
			})
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": service})
		})
	return g
}

// publicShopRoutes lists shops that are approved, visible, and covered by an
// active subscription.
func publicShopRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.GET("/shops", func(ctx *gin.Context) {
		db := db.GetDb()
		var shops []models.Shop
		if err := db.
			Model(&models.Shop{}).
			Where(&models.Shop{Status: types.SHOP_APPROVED, Visible: true}).
			Find(&shops).
			Error; err != nil {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		visible := make([]models.Shop, 0, len(shops))
		for _, shop := range shops {
			active, err := common.IsShopActive(shop.ID)
			if err != nil || !active {
				continue
			}
			visible = append(visible, shop)
		}
		ctx.JSON(http.StatusOK, gin.H{"data": visible, "count": len(visible)})
	})
	return g
}
