// Package server wires the HTTP surface: gin router, auth convention,
// and the JSON response envelope used by every endpoint.
package server

import (
	"context"

	"aircast/internal/aqi"
	"aircast/internal/chatbot"
	apperrors "aircast/internal/errors"
	"aircast/internal/models"
	"aircast/internal/personalize"
	"aircast/internal/storage"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// InstantRunner is the slice of the alert scheduler the instant
// endpoint needs.
type InstantRunner interface {
	RunInstant(ctx context.Context, userID uint) (*aqi.Sample, error)
}

// Server aggregates all collaborators behind the HTTP surface.
type Server struct {
	store   storage.Store
	aqi     *aqi.Client
	engine  *personalize.Engine
	bot     *chatbot.Bot
	instant InstantRunner
}

func New(store storage.Store, aqiClient *aqi.Client, engine *personalize.Engine, bot *chatbot.Bot, instant InstantRunner) *Server {
	return &Server{
		store:   store,
		aqi:     aqiClient,
		engine:  engine,
		bot:     bot,
		instant: instant,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", s.handleSignup)
		auth.POST("/login", s.handleLogin)
		auth.GET("/profile/:userId", s.handleGetProfile)
		auth.PATCH("/profile/:userId", requireAuth(), s.handleUpdateProfile)
		auth.GET("/alert-prefs/:userId", s.handleGetAlertPrefs)
		auth.PATCH("/alert-prefs/:userId", requireAuth(), s.handleUpdateAlertPrefs)
		auth.GET("/badges/:userId", s.handleGetBadges)
		auth.PATCH("/badges/:userId", requireAuth(), s.handleUpdateBadges)
	}

	api := r.Group("/api")
	{
		api.GET("/aqi", s.handleCurrentAQI)
		api.POST("/aqi/batch", s.handleBatchAQI)

		api.GET("/history", s.handleListHistory)
		api.POST("/history", s.handleInsertHistory)
		api.GET("/history/city", s.handleHistoryByCity)

		api.GET("/pak_cities", s.handleCities)

		api.GET("/user-reports", s.handleListReports)
		api.POST("/user-reports", requireAuth(), s.handleCreateReport)
		api.POST("/user-reports/:id/upvote", requireAuth(), s.handleReportVote(models.VoteUp))
		api.POST("/user-reports/:id/downvote", requireAuth(), s.handleReportVote(models.VoteDown))

		api.GET("/polls", s.handleListPolls)
		api.POST("/polls", requireAuth(), s.handleCreatePoll)
		api.POST("/polls/:id/vote", requireAuth(), s.handlePollVote)

		api.POST("/alerts/instant/:userId", requireAuth(), s.handleInstantAlert)

		api.POST("/personalization/recommendations", s.handleRecommendations)
		api.POST("/chatbot/message", s.handleChatMessage)
	}

	return r
}

// ok writes the success envelope with extra payload keys merged in.
func ok(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail writes the failure envelope from a normalized error, choosing
// status and sanitized message via the error taxonomy.
func fail(c *gin.Context, err error, context string) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"success": false,
		"error":   apperrors.Message(err, context),
	})
}

// failValidation is a shorthand for boundary validation failures.
func failValidation(c *gin.Context, msg string) {
	fail(c, apperrors.Wrap(apperrors.ErrValidation, "%s", msg), "")
}
