package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/onboarding-backend/internal/http/handlers"
	httpMW "github.com/yungbote/onboarding-backend/internal/http/middleware"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string

	UserHandler       *httpH.UserHandler
	DocumentHandler   *httpH.DocumentHandler
	AssessmentHandler *httpH.AssessmentHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		if cfg.UserHandler != nil {
			api.POST("/users", cfg.UserHandler.Create)
			api.GET("/users", cfg.UserHandler.List)
			api.GET("/users/:id", cfg.UserHandler.Get)
			api.PATCH("/users/:id", cfg.UserHandler.Update)
			api.DELETE("/users/:id", cfg.UserHandler.Delete)
			api.POST("/users/:id/sift-scores", cfg.UserHandler.AddSiftScore)
			api.GET("/users/:id/sift-scores", cfg.UserHandler.ListSiftScores)
		}

		if cfg.DocumentHandler != nil {
			api.POST("/documents/upload", cfg.DocumentHandler.Upload)
			api.GET("/documents/:id", cfg.DocumentHandler.Get)
			api.GET("/documents/user/:user_id", cfg.DocumentHandler.ListByUser)
			api.POST("/documents/:id/reprocess", cfg.DocumentHandler.Reprocess)
			api.POST("/documents/:id/verify", cfg.DocumentHandler.Verify)
			api.DELETE("/documents/:id", cfg.DocumentHandler.Delete)
		}

		if cfg.AssessmentHandler != nil {
			api.POST("/assessments", cfg.AssessmentHandler.Request)
			api.GET("/assessments/:id", cfg.AssessmentHandler.Get)
			api.GET("/assessments/user/:user_id", cfg.AssessmentHandler.ListByUser)
			api.GET("/assessments/user/:user_id/latest", cfg.AssessmentHandler.LatestByUser)
			api.DELETE("/assessments/:id", cfg.AssessmentHandler.Delete)
		}
	}

	return r
}
