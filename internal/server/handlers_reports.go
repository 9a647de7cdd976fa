package server

import (
	"net/http"

	"aircast/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListReports(c *gin.Context) {
	reports, err := s.store.ListReports()
	if err != nil {
		fail(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) handleCreateReport(c *gin.Context) {
	var req struct {
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
		Description string  `json:"description"`
		PhotoURL    string  `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	if req.Description == "" {
		failValidation(c, "description is required")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		failValidation(c, "lat/lon out of range")
		return
	}

	report := &models.Report{
		UserID:      authedUserID(c),
		Lat:         req.Lat,
		Lon:         req.Lon,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	}
	if err := s.store.CreateReport(report); err != nil {
		fail(c, err, "report")
		return
	}
	ok(c, http.StatusCreated, gin.H{"report": report})
}

// handleReportVote serves both the upvote and downvote endpoints; the
// toggle/switch semantics live in the vote state machine.
func (s *Server) handleReportVote(voteType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reportID, valid := pathID(c, "id")
		if !valid {
			failValidation(c, "invalid report id")
			return
		}

		result, err := s.store.ApplyReportVote(reportID, authedUserID(c), voteType)
		if err != nil {
			fail(c, err, "report")
			return
		}
		ok(c, http.StatusOK, gin.H{
			"action":    result.Action,
			"upvotes":   result.Upvotes,
			"downvotes": result.Downvotes,
		})
	}
}
