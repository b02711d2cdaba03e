package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	"pbs/src/boot"
	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/middlewares"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return time.Now().Before(datetime)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	publicShopRoutes(apiv1)
	return apiv1
}

// guestAuthRoutes issues a token for a known user. Real session issuance
// belongs to the identity provider; this endpoint backs local runs and tests.
func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	guest := apiv1.Group("/auth")
	guest.
		POST("/login", func(ctx *gin.Context) {
			var body struct {
				Email string `json:"email" binding:"required,email"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.
				Model(&models.User{}).
				Where(&models.User{Email: body.Email}).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
			if err != nil {
				log.Printf("Error generating token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token})
		}).
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user := models.User{
				Email: body.Email,
				Name:  body.Name,
				UID:   uuid.NewString(),
			}
			db := db.GetDb()
			if err := db.Create(&user).Error; err != nil {
				log.Printf("[register] error creating user: %s\n", err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": user.ID, "uid": user.UID}})
		})
	return guest
}

// respondDomainError maps the error taxonomy onto status codes. Unknown
// errors stay opaque to the caller.
func respondDomainError(ctx *gin.Context, err error) {
	var derr *types.DomainError
	if !errors.As(err, &derr) {
		log.Printf("Could not complete request: %s\n", err.Error())
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
		return
	}
	status := http.StatusUnprocessableEntity
	switch derr.Kind {
	case types.ERR_VALIDATION:
		status = http.StatusBadRequest
	case types.ERR_FORBIDDEN:
		status = http.StatusForbidden
	case types.ERR_NOT_FOUND:
		status = http.StatusNotFound
	case types.ERR_CONFLICT, types.ERR_DUPLICATE_ASSIGNMENT, types.ERR_ALREADY_RESOLVED:
		status = http.StatusConflict
	case types.ERR_INVALID_TRANSITION, types.ERR_NOT_ELIGIBLE:
		status = http.StatusUnprocessableEntity
	}
	ctx.JSON(status, gin.H{"error": derr.Message, "kind": derr.Kind})
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
	}
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}

	boot.InitDb()
	boot.InitScheduler()
	go boot.InitBroker()

	router := setupRouter()

	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "Idempotency-Key")
		cc.AllowOrigins = []string{os.Getenv("APP_HOST")}
		cc.AllowCredentials = true
		router.Use(cors.New(cc))
	}

	registerValidators()

	router = maintenanceModeMiddleware(router)

	publicRoutes(router)
	guestAuthRoutes(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		bookingHandlers(authorized)
		shiftHandlers(authorized)
		subscriptionHandlers(authorized)
		approvalHandlers(authorized)
		shopHandlers(authorized)
		employeeHandlers(authorized)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
