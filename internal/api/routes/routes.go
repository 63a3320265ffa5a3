package routes

import (
	"net/http"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/api/handlers"
	"github.com/erindhoxha/mern-stack-site/internal/api/middleware"
	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Logger      *logrus.Logger
	Tokens      services.TokenService
	Metrics     *middleware.Metrics
	CORSOrigins []string

	Auth    *handlers.AuthHandler
	Account *handlers.AccountHandler
	Profile *handlers.ProfileHandler
	Post    *handlers.PostHandler
	// Stream is nil when Redis is not configured.
	Stream *handlers.StreamHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.TokenHeader, "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}

	private := middleware.Auth(d.Tokens)
	api := r.Group("/api")

	api.POST("/users", d.Auth.Register)
	api.POST("/auth", d.Auth.Login)
	api.GET("/auth", private, d.Auth.Me)
	api.GET("/auth/activity", private, d.Account.Activity)

	profile := api.Group("/profile")
	profile.GET("/me", private, d.Profile.Me)
	profile.POST("", private, d.Profile.Upsert)
	profile.GET("/all", d.Profile.List)
	profile.GET("/:uid", d.Profile.GetByUser)
	profile.DELETE("", private, d.Account.Delete)
	profile.PUT("/experience", private, d.Profile.AddExperience)
	profile.DELETE("/experience/:exp_id", private, d.Profile.RemoveExperience)
	profile.PUT("/education", private, d.Profile.AddEducation)
	profile.DELETE("/education/:edu_id", private, d.Profile.RemoveEducation)
	profile.GET("/github/:username", d.Profile.GithubRepos)

	posts := api.Group("/posts")
	posts.POST("", private, d.Post.Create)
	posts.GET("", d.Post.List)
	if d.Stream != nil {
		posts.GET("/stream", d.Stream.Posts)
	} else {
		posts.GET("/stream", handlers.StreamUnavailable)
	}
	posts.GET("/:id", private, d.Post.Get)
	posts.DELETE("/:id", private, d.Post.Delete)
	posts.PUT("/like/:id", private, d.Post.ToggleLike)
	posts.POST("/comment/:id", private, d.Post.AddComment)
	posts.DELETE("/comment/:post_id/:comment_id", private, d.Post.RemoveComment)
}
