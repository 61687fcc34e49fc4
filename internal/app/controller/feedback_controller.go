package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/internal/middleware"
)

type FeedbackController struct {
	feedbackService service.FeedbackService
}

func NewFeedbackController(feedbackService service.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

type SubmitFeedbackRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// SubmitFeedback accepts a contact-form message. Works for guests; a
// signed-in user gets linked to the entry.
// POST /api/v1/feedback
func (ctrl *FeedbackController) SubmitFeedback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Name, email and message are required",
		})
		return
	}

	var userID *uint
	if id, exists := middleware.GetUserID(c); exists {
		userID = &id
	}

	entry, err := ctrl.feedbackService.Submit(userID, req.Name, req.Email, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrEmptyFeedback) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Feedback message is required",
			})
			return
		}
		log.Error("Failed to save feedback", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to submit feedback",
		})
		return
	}

	log.Info("Feedback submitted", map[string]interface{}{
		"feedback_id": entry.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Thank you for your feedback",
		"feedback": entry,
	})
}
