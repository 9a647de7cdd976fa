package server

import (
	"net/http"
	"strings"

	"aircast/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListPolls(c *gin.Context) {
	polls, err := s.store.ListPolls()
	if err != nil {
		fail(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"polls": polls})
}

func (s *Server) handleCreatePoll(c *gin.Context) {
	var req struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		failValidation(c, "question is required")
		return
	}
	if len(req.Options) < 2 {
		failValidation(c, "a poll needs at least 2 options")
		return
	}
	seen := make(map[string]bool, len(req.Options))
	for _, opt := range req.Options {
		if strings.TrimSpace(opt) == "" {
			failValidation(c, "options cannot be blank")
			return
		}
		if seen[opt] {
			failValidation(c, "options must be unique")
			return
		}
		seen[opt] = true
	}

	poll := &models.Poll{Question: req.Question, Options: req.Options}
	if err := s.store.CreatePoll(poll); err != nil {
		fail(c, err, "poll")
		return
	}
	ok(c, http.StatusCreated, gin.H{"poll": poll})
}

func (s *Server) handlePollVote(c *gin.Context) {
	pollID, valid := pathID(c, "id")
	if !valid {
		failValidation(c, "invalid poll id")
		return
	}
	var req struct {
		Option string `json:"option"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	if req.Option == "" {
		failValidation(c, "option is required")
		return
	}

	poll, err := s.store.ApplyPollVote(pollID, authedUserID(c), req.Option)
	if err != nil {
		fail(c, err, "poll")
		return
	}
	ok(c, http.StatusOK, gin.H{"poll": poll})
}
