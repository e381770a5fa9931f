package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserProgress holds the per-user running totals. One row per user, created
// lazily on the first tracked event or the first dashboard view. The totals
// and the overall percent are recomputed from the page view and exercise
// tables after every event, never drifted incrementally.
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID                 uint      `gorm:"uniqueIndex;not null" json:"userId"`
	TotalChaptersViewed    int       `gorm:"default:0" json:"totalChaptersViewed"`
	TotalChaptersCompleted int       `gorm:"default:0" json:"totalChaptersCompleted"`
	TotalPagesViewed       int       `gorm:"default:0" json:"totalPagesViewed"`
	TotalExercisesChecked  int       `gorm:"column:total_exercises_completed;default:0" json:"totalExercisesCompleted"`
	OverallProgressPercent float64   `gorm:"default:0" json:"overallProgressPercent"`
	LastActivityAt         time.Time `json:"lastActivityAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// UserPageView tracks one user's reading state for a single page.
// CompletionPercent only moves up, except for the explicit chapter_completed
// event which forces it to 100.
// swagger:model UserPageView
type UserPageView struct {
	BaseModel
	UserID            uint      `gorm:"index;uniqueIndex:idx_user_chapter_page;not null" json:"userId"`
	ProgressID        uint      `gorm:"index;not null" json:"progressId"`
	ChapterID         string    `gorm:"size:64;uniqueIndex:idx_user_chapter_page;index;not null" json:"chapterId"`
	PageID            string    `gorm:"size:64;uniqueIndex:idx_user_chapter_page;not null" json:"pageId"`
	PageTitle         string    `gorm:"size:256" json:"pageTitle"`
	IsCompleted       bool      `gorm:"default:false" json:"isCompleted"`
	CompletionPercent float64   `gorm:"default:0" json:"completionPercent"`
	TimeSpentSeconds  int       `gorm:"default:0" json:"timeSpentSeconds"`
	ViewCount         int       `gorm:"default:1" json:"viewCount"`
	FirstViewedAt     time.Time `json:"firstViewedAt"`
	LastViewedAt      time.Time `json:"lastViewedAt"`
}

func (UserPageView) TableName() string {
	return "user_page_views"
}

// Interaction kinds recorded in user_interactions.
const (
	InteractionScroll           = "scroll"
	InteractionExercise         = "exercise"
	InteractionChapterCompleted = "chapter_completed"
)

// UserInteraction is the append-only audit log of raw tracking events.
// Rows are written once and never updated or deleted.
// swagger:model UserInteraction
type UserInteraction struct {
	BaseModel
	UserID     uint           `gorm:"index;not null" json:"userId"`
	PageViewID uint           `gorm:"index;not null" json:"pageViewId"`
	Type       string         `gorm:"column:interaction_type;size:64;not null" json:"type"`
	Data       datatypes.JSON `gorm:"column:interaction_data" json:"data"`
}

func (UserInteraction) TableName() string {
	return "user_interactions"
}

// UserExercise tracks attempts and completion for one exercise of a chapter.
// swagger:model UserExercise
type UserExercise struct {
	BaseModel
	UserID         uint       `gorm:"index;uniqueIndex:idx_user_chapter_exercise;not null" json:"userId"`
	ChapterID      string     `gorm:"size:64;uniqueIndex:idx_user_chapter_exercise;index;not null" json:"chapterId"`
	ExerciseID     string     `gorm:"size:64;uniqueIndex:idx_user_chapter_exercise;not null" json:"exerciseId"`
	ExerciseTitle  string     `gorm:"size:256" json:"exerciseTitle"`
	IsCompleted    bool       `gorm:"default:false" json:"isCompleted"`
	Attempts       int        `gorm:"default:0" json:"attempts"`
	Score          *float64   `json:"score,omitempty"`
	CodeSubmitted  string     `gorm:"type:text" json:"-"`
	FirstAttemptAt time.Time  `json:"firstAttemptAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

func (UserExercise) TableName() string {
	return "user_exercises"
}
