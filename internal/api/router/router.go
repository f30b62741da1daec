package router

import (
	"time"

	"academic-records/internal/api/handlers"
	"academic-records/internal/api/middleware"
	"academic-records/internal/domain/user"
	interfaces "academic-records/internal/interfaces/infrastructure"
	serviceInterfaces "academic-records/internal/interfaces/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the status API reads from.
type Dependencies struct {
	Records  serviceInterfaces.RecordsService
	Users    user.UserService
	Auth     user.AuthService
	Sessions interfaces.SessionCache
	Version  string
	// AllowOrigins defaults to every origin when empty.
	AllowOrigins []string
}

func NewRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(middleware.Logger())
	r.Use(cors.New(corsConfig(deps.AllowOrigins)))
	r.Use(gin.Recovery())

	var cache handlers.HealthChecker
	if deps.Sessions != nil {
		cache = deps.Sessions
	}

	healthHandler := handlers.NewHealthHandler(deps.Version, deps.Records.Stats, cache)
	recordsHandler := handlers.NewRecordsHandler(deps.Records)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Auth)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/ready", healthHandler.ReadinessCheck)
	r.GET("/live", healthHandler.LivenessCheck)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/login", userHandler.Login)

		auth := v1.Group("", middleware.RequireSession(deps.Auth))
		{
			auth.POST("/logout", userHandler.Logout)
			auth.GET("/me", userHandler.Me)
			auth.GET("/stats", middleware.RequirePermission(user.ActionManageUsers), recordsHandler.Stats)

			students := auth.Group("/students", middleware.RequirePermission(user.ActionViewStudents))
			{
				students.GET("", recordsHandler.ListStudents)
				students.GET("/:ra", recordsHandler.GetStudent)
				students.GET("/:ra/classes", recordsHandler.StudentClasses)
			}

			classes := auth.Group("/classes", middleware.RequirePermission(user.ActionViewClasses))
			{
				classes.GET("", recordsHandler.ListClasses)
				classes.GET("/:id", recordsHandler.GetClass)
				classes.GET("/:id/students", middleware.RequirePermission(user.ActionViewStudents), recordsHandler.ClassStudents)
				classes.GET("/:id/lessons", middleware.RequirePermission(user.ActionViewLessons), recordsHandler.ClassLessons)
				classes.GET("/:id/activities", middleware.RequirePermission(user.ActionDownloadActivity), recordsHandler.ClassActivities)
			}

			users := auth.Group("/users", middleware.RequirePermission(user.ActionManageUsers))
			{
				users.POST("", userHandler.CreateUser)
				users.GET("", userHandler.ListUsers)
				users.GET("/:id", userHandler.GetUser)
				users.PATCH("/:id", userHandler.UpdateUser)
				users.POST("/:id/password", userHandler.ResetPassword)
				users.DELETE("/:id", userHandler.DeleteUser)
			}
		}
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
