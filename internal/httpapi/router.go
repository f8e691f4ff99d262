package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/common"
	"github.com/prepforge/interview-platform/internal/config"
	"github.com/prepforge/interview-platform/internal/httpapi/handlers"
	"github.com/prepforge/interview-platform/internal/httpapi/middleware"
	"github.com/prepforge/interview-platform/internal/interview"
	"github.com/prepforge/interview-platform/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, svc *interview.Service, rds *redisstore.Store) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, svc)

	r.GET("/ping", func(c *gin.Context) { common.OK(c, gin.H{"pong": true}) })

	api := r.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("/")
	authed.Use(middleware.AuthRequired(cfg.JWTSecret))

	authed.GET("/auth/me", h.Me)

	authed.POST("/interviews", h.CreateInterview)
	authed.GET("/interviews", h.ListInterviews)
	authed.GET("/interviews/:id", h.GetInterview)
	authed.GET("/interviews/:id/messages", h.ListInterviewMessages)
	authed.POST("/interviews/:id/messages",
		middleware.RateLimit(rds, "answers", cfg.AnswerRateLimit), h.SubmitAnswer)
	authed.POST("/interviews/:id/complete", h.CompleteInterview)

	authed.GET("/subjects", h.ListSubjects)
	authed.POST("/subjects", h.CreateSubject)
	authed.POST("/subjects/:id/enroll", h.EnrollSubject)
	authed.DELETE("/subjects/:id/enroll", h.UnenrollSubject)
	authed.GET("/subjects/:id/interviews", h.SubjectInterviews)
	authed.POST("/subjects/:id/materials", h.CreateStudyMaterial)
	authed.GET("/subjects/:id/materials", h.ListStudyMaterials)
	authed.DELETE("/materials/:id", h.DeleteStudyMaterial)

	admin := authed.Group("/admin")
	admin.Use(h.AdminRequired())
	admin.GET("/users", h.AdminListUsers)
	admin.GET("/interviews", h.AdminListInterviews)

	return r
}
