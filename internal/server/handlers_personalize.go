package server

import (
	"net/http"

	"aircast/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRecommendations(c *gin.Context) {
	var req struct {
		UserID        uint                  `json:"user_id"`
		AQI           int                   `json:"aqi"`
		HealthProfile *models.HealthProfile `json:"health_profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	if req.AQI == 0 {
		failValidation(c, "aqi is required")
		return
	}

	profile := req.HealthProfile
	if profile == nil && req.UserID != 0 {
		if user, err := s.store.GetUserByID(req.UserID); err == nil {
			profile = user.HealthProfile
		}
	}

	recs, source := s.engine.Recommendations(c.Request.Context(), profile, req.AQI)
	ok(c, http.StatusOK, gin.H{"recommendations": recs, "source": source})
}

func (s *Server) handleChatMessage(c *gin.Context) {
	var req struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id"`
		City           string `json:"city"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}

	answer, conversationID, err := s.bot.Reply(c.Request.Context(), req.ConversationID, req.City, req.Message)
	if err != nil {
		fail(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"reply": answer, "conversation_id": conversationID})
}
