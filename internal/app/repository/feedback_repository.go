package repository

import (
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(feedback *model.Feedback) error
	FindAll() ([]model.Feedback, error)
	FindRecent(limit int) ([]model.Feedback, error)
	Delete(id uint) error
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(feedback *model.Feedback) error {
	logger.Debug("Creating feedback in database", map[string]interface{}{
		"email": feedback.Email,
	})

	if err := r.db.Create(feedback).Error; err != nil {
		logger.Error("Failed to create feedback in database", err, map[string]interface{}{
			"email": feedback.Email,
		})
		return err
	}
	return nil
}

func (r *feedbackRepository) FindAll() ([]model.Feedback, error) {
	var feedback []model.Feedback
	if err := r.db.Order("created_at DESC").Find(&feedback).Error; err != nil {
		logger.Error("Failed to find feedback in database", err, nil)
		return nil, err
	}
	return feedback, nil
}

func (r *feedbackRepository) FindRecent(limit int) ([]model.Feedback, error) {
	var feedback []model.Feedback
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&feedback).Error; err != nil {
		logger.Error("Failed to find recent feedback in database", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}
	return feedback, nil
}

func (r *feedbackRepository) Delete(id uint) error {
	logger.Debug("Deleting feedback in database", map[string]interface{}{
		"feedback_id": id,
	})

	result := r.db.Delete(&model.Feedback{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete feedback in database", result.Error, map[string]interface{}{
			"feedback_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
