package service

import (
	"book_platform_backend/internal/config"
	"book_platform_backend/internal/model"
	"book_platform_backend/internal/repository"
	"book_platform_backend/internal/util"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Event types accepted by Track.
const (
	EventScroll           = "scroll"
	EventTimeSpent        = "time_spent"
	EventExerciseAttempt  = "exercise_attempt"
	EventChapterCompleted = "chapter_completed"
)

// Relative weight of chapter reading vs. exercise completion in the overall
// progress percentage.
const (
	chapterWeight  = 70.0
	exerciseWeight = 30.0
)

// TrackEvent is one granular interaction reported by the reader client.
type TrackEvent struct {
	ChapterID      string
	PageID         string
	EventType      string
	PageTitle      string
	ScrollPercent  float64
	Seconds        int
	ExerciseID     string
	ExerciseTitle  string
	Code           string
	IsCorrect      bool
	Score          *float64
	CompletionType string
}

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	Cfg          *config.Config
	DB           *gorm.DB
}

func NewProgressService(progressRepo *repository.ProgressRepository, cfg *config.Config, db *gorm.DB) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		Cfg:          cfg,
		DB:           db,
	}
}

// Track processes one event inside a single transaction: either every
// derived-state change commits, or none do. The progress row is locked for
// update first, which serializes concurrent events from the same user and
// prevents two racing scroll events from losing an update.
func (s *ProgressService) Track(userID uint, ev *TrackEvent) (float64, error) {
	var overall float64

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		progress, err := lockOrCreateProgress(tx, userID, now)
		if err != nil {
			return err
		}

		view, err := s.loadPageView(tx, progress, ev, now)
		if err != nil {
			return err
		}

		switch ev.EventType {
		case EventScroll:
			err = s.applyScroll(tx, userID, view, ev)
		case EventTimeSpent:
			view.TimeSpentSeconds += ev.Seconds
		case EventExerciseAttempt:
			err = s.applyExerciseAttempt(tx, userID, view, ev, now)
		case EventChapterCompleted:
			err = s.applyChapterCompleted(tx, userID, view, ev)
		default:
			err = util.NewValidationError("event_type", "unknown event type "+ev.EventType)
		}
		if err != nil {
			return err
		}

		if err := tx.Save(view).Error; err != nil {
			return err
		}

		if err := s.recompute(tx, userID, progress, now); err != nil {
			return err
		}

		overall = progress.OverallProgressPercent
		return nil
	})

	if err != nil {
		return 0, err
	}
	return overall, nil
}

// lockOrCreateProgress fetches the per-user progress row under a row lock,
// creating it lazily on the first event.
func lockOrCreateProgress(tx *gorm.DB, userID uint, now time.Time) (*model.UserProgress, error) {
	q := tx
	// SQLite has no FOR UPDATE; its writers already serialize on the
	// database lock.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var progress model.UserProgress
	err := q.Where("user_id = ?", userID).
		First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		progress = model.UserProgress{
			UserID:         userID,
			LastActivityAt: now,
		}
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// loadPageView fetches or creates the (user, chapter, page) row. A first
// view bumps the pages-viewed counter and, when the chapter was never seen
// before, the chapters-viewed counter; repeat views bump the view count.
func (s *ProgressService) loadPageView(tx *gorm.DB, progress *model.UserProgress, ev *TrackEvent, now time.Time) (*model.UserPageView, error) {
	var view model.UserPageView
	err := tx.Where("user_id = ? AND chapter_id = ? AND page_id = ?",
		progress.UserID, ev.ChapterID, ev.PageID).First(&view).Error

	if err == gorm.ErrRecordNotFound {
		var chapterViews int64
		if err := tx.Model(&model.UserPageView{}).
			Where("user_id = ? AND chapter_id = ?", progress.UserID, ev.ChapterID).
			Count(&chapterViews).Error; err != nil {
			return nil, err
		}

		title := ev.PageTitle
		if title == "" {
			title = ev.ChapterID + "/" + ev.PageID
		}

		view = model.UserPageView{
			UserID:        progress.UserID,
			ProgressID:    progress.ID,
			ChapterID:     ev.ChapterID,
			PageID:        ev.PageID,
			PageTitle:     title,
			ViewCount:     1,
			FirstViewedAt: now,
			LastViewedAt:  now,
		}
		if err := tx.Create(&view).Error; err != nil {
			return nil, err
		}

		progress.TotalPagesViewed++
		if chapterViews == 0 {
			progress.TotalChaptersViewed++
		}
		return &view, nil
	}
	if err != nil {
		return nil, err
	}

	view.ViewCount++
	view.LastViewedAt = now
	return &view, nil
}

// applyScroll raises the completion percent monotonically and completes the
// page once the reader passes 90%.
func (s *ProgressService) applyScroll(tx *gorm.DB, userID uint, view *model.UserPageView, ev *TrackEvent) error {
	pct := ev.ScrollPercent
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	if pct > view.CompletionPercent {
		view.CompletionPercent = pct
	}
	if pct >= 90 && !view.IsCompleted {
		view.IsCompleted = true
	}

	return appendInteraction(tx, userID, view.ID, model.InteractionScroll, map[string]interface{}{
		"scroll_percent": pct,
	})
}

// applyExerciseAttempt records the attempt and, when the answer is correct,
// marks the exercise completed exactly once. If that completes every
// exercise of the chapter and the page is read past 90%, the page itself is
// forced completed.
func (s *ProgressService) applyExerciseAttempt(tx *gorm.DB, userID uint, view *model.UserPageView, ev *TrackEvent, now time.Time) error {
	if ev.ExerciseID == "" {
		return util.NewValidationError("exercise_id", "exercise_id is required for exercise_attempt events")
	}

	var exercise model.UserExercise
	err := tx.Where("user_id = ? AND chapter_id = ? AND exercise_id = ?",
		userID, ev.ChapterID, ev.ExerciseID).First(&exercise).Error
	if err == gorm.ErrRecordNotFound {
		title := ev.ExerciseTitle
		if title == "" {
			title = "Exercise " + ev.ExerciseID
		}
		exercise = model.UserExercise{
			UserID:         userID,
			ChapterID:      ev.ChapterID,
			ExerciseID:     ev.ExerciseID,
			ExerciseTitle:  title,
			FirstAttemptAt: now,
		}
		if err := tx.Create(&exercise).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	exercise.Attempts++
	exercise.CodeSubmitted = ev.Code
	if ev.Score != nil {
		exercise.Score = ev.Score
	}

	if ev.IsCorrect && !exercise.IsCompleted {
		exercise.IsCompleted = true
		exercise.CompletedAt = &now
	}

	if err := tx.Save(&exercise).Error; err != nil {
		return err
	}

	if ev.IsCorrect {
		var remaining int64
		if err := tx.Model(&model.UserExercise{}).
			Where("user_id = ? AND chapter_id = ? AND is_completed = ?", userID, ev.ChapterID, false).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 && view.CompletionPercent >= 90 {
			view.IsCompleted = true
		}
	}

	return appendInteraction(tx, userID, view.ID, model.InteractionExercise, map[string]interface{}{
		"exercise_id": ev.ExerciseID,
		"attempt":     exercise.Attempts,
		"is_correct":  ev.IsCorrect,
	})
}

// applyChapterCompleted is the explicit override: every page of the chapter
// is forced to completed with 100%, regardless of scroll state.
func (s *ProgressService) applyChapterCompleted(tx *gorm.DB, userID uint, view *model.UserPageView, ev *TrackEvent) error {
	if err := tx.Model(&model.UserPageView{}).
		Where("user_id = ? AND chapter_id = ?", userID, ev.ChapterID).
		Updates(map[string]interface{}{
			"is_completed":       true,
			"completion_percent": 100,
		}).Error; err != nil {
		return err
	}

	// Keep the loaded row in sync with the bulk update; it is saved after
	// the event switch.
	view.IsCompleted = true
	view.CompletionPercent = 100

	completionType := ev.CompletionType
	if completionType == "" {
		completionType = "user_marked"
	}

	return appendInteraction(tx, userID, view.ID, model.InteractionChapterCompleted, map[string]interface{}{
		"completion_type": completionType,
	})
}

func appendInteraction(tx *gorm.DB, userID, pageViewID uint, kind string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return tx.Create(&model.UserInteraction{
		UserID:     userID,
		PageViewID: pageViewID,
		Type:       kind,
		Data:       payload,
	}).Error
}

// recompute rebuilds every derived total from the page view and exercise
// tables. Nothing is maintained incrementally, so replaying events or
// re-marking an already completed exercise cannot drift the aggregates.
func (s *ProgressService) recompute(tx *gorm.DB, userID uint, progress *model.UserProgress, now time.Time) error {
	var views []model.UserPageView
	if err := tx.Where("user_id = ?", userID).Find(&views).Error; err != nil {
		return err
	}

	var exercises []model.UserExercise
	if err := tx.Where("user_id = ?", userID).Find(&exercises).Error; err != nil {
		return err
	}

	completedChapters := map[string]bool{}
	for _, v := range views {
		if v.IsCompleted {
			completedChapters[v.ChapterID] = true
		}
	}

	exercisesCompleted := 0
	chaptersWithExercises := map[string]bool{}
	chaptersWithOpenExercises := map[string]bool{}
	for _, ex := range exercises {
		chaptersWithExercises[ex.ChapterID] = true
		if ex.IsCompleted {
			exercisesCompleted++
		} else {
			chaptersWithOpenExercises[ex.ChapterID] = true
		}
	}

	chapterProgress := float64(len(completedChapters)) / float64(s.Cfg.Content.TotalChapters) * chapterWeight

	exerciseProgress := 0.0
	if len(chaptersWithExercises) > 0 {
		fullyDone := len(chaptersWithExercises) - len(chaptersWithOpenExercises)
		exerciseProgress = float64(fullyDone) / float64(len(chaptersWithExercises)) * exerciseWeight
	}

	overall := chapterProgress + exerciseProgress
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	progress.TotalChaptersCompleted = len(completedChapters)
	progress.TotalExercisesChecked = exercisesCompleted
	progress.OverallProgressPercent = overall
	progress.LastActivityAt = now

	return tx.Save(progress).Error
}
