package repository

import (
	"book_platform_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// GetOrCreateByUser returns the user's progress row, creating an empty one
// on first access. Exactly one row exists per user.
func (r *ProgressRepository) GetOrCreateByUser(userID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.Where("user_id = ?", userID).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		progress = model.UserProgress{
			UserID:         userID,
			LastActivityAt: time.Now(),
		}
		if err := r.DB.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) PageViewsByUser(userID uint) ([]model.UserPageView, error) {
	var views []model.UserPageView
	err := r.DB.Where("user_id = ?", userID).Find(&views).Error
	return views, err
}

func (r *ProgressRepository) ExercisesByUser(userID uint) ([]model.UserExercise, error) {
	var exercises []model.UserExercise
	err := r.DB.Where("user_id = ?", userID).Find(&exercises).Error
	return exercises, err
}

// AllPageViews feeds the admin chapter statistics. The admin view is a full
// scan with in-memory grouping, not incremental counters.
func (r *ProgressRepository) AllPageViews() ([]model.UserPageView, error) {
	var views []model.UserPageView
	err := r.DB.Find(&views).Error
	return views, err
}

func (r *ProgressRepository) InteractionsByPageView(pageViewID uint) ([]model.UserInteraction, error) {
	var interactions []model.UserInteraction
	err := r.DB.Where("page_view_id = ?", pageViewID).Order("id").Find(&interactions).Error
	return interactions, err
}
