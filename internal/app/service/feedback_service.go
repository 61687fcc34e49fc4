package service

import (
	"errors"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrEmptyFeedback    = errors.New("feedback message is required")
	ErrFeedbackNotFound = errors.New("feedback not found")
)

type FeedbackService interface {
	Submit(userID *uint, name, email, message string) (*model.Feedback, error)
	List() ([]model.Feedback, error)
	Recent(limit int) ([]model.Feedback, error)
	Delete(id uint) error
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
}

func NewFeedbackService(feedbackRepo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{feedbackRepo: feedbackRepo}
}

func (s *feedbackService) Submit(userID *uint, name, email, message string) (*model.Feedback, error) {
	if message == "" {
		return nil, ErrEmptyFeedback
	}

	feedback := &model.Feedback{
		UserID:  userID,
		Name:    name,
		Email:   email,
		Message: message,
	}

	if err := s.feedbackRepo.Create(feedback); err != nil {
		logger.Error("Failed to save feedback", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("Feedback submitted", map[string]interface{}{
		"feedback_id": feedback.ID,
		"email":       email,
	})

	return feedback, nil
}

func (s *feedbackService) List() ([]model.Feedback, error) {
	return s.feedbackRepo.FindAll()
}

func (s *feedbackService) Recent(limit int) ([]model.Feedback, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.feedbackRepo.FindRecent(limit)
}

func (s *feedbackService) Delete(id uint) error {
	if err := s.feedbackRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeedbackNotFound
		}
		return err
	}

	logger.Info("Feedback deleted", map[string]interface{}{
		"feedback_id": id,
	})
	return nil
}
