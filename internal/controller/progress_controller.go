package controller

import (
	"book_platform_backend/internal/service"
	"book_platform_backend/internal/util"
	"book_platform_backend/pkg/logger"
	"book_platform_backend/pkg/monitoring"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProgressController struct {
	ProgressService  *service.ProgressService
	DashboardService *service.DashboardService
}

func NewProgressController(progressService *service.ProgressService, dashboardService *service.DashboardService) *ProgressController {
	return &ProgressController{
		ProgressService:  progressService,
		DashboardService: dashboardService,
	}
}

// swagger:model TrackRequest
type TrackRequest struct {
	ChapterID      string   `json:"chapter_id"`
	PageID         string   `json:"page_id"`
	EventType      string   `json:"event_type"`
	PageTitle      string   `json:"page_title"`
	ScrollPercent  float64  `json:"scroll_percent"`
	Seconds        int      `json:"seconds"`
	ExerciseID     string   `json:"exercise_id"`
	ExerciseTitle  string   `json:"exercise_title"`
	Code           string   `json:"code"`
	IsCorrect      bool     `json:"is_correct"`
	Score          *float64 `json:"score"`
	CompletionType string   `json:"completion_type"`
}

// Track godoc
// @Summary Ingest a progress tracking event
// @Description Accepts scroll, time_spent, exercise_attempt and
// @Description chapter_completed events from the reader client. The response
// @Description shape is fixed by the client contract and bypasses the shared
// @Description envelope.
// @Tags progress
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body TrackRequest true "Event"
// @Success 200 {object} object "{success: true, progress: number}"
// @Failure 400 {object} object "Missing or invalid fields"
// @Failure 401 {object} object "Not authenticated"
// @Failure 415 {object} object "Body is not JSON"
// @Failure 500 {object} object "Persistence failure, fully rolled back"
// @Router /api/progress/track [post]
func (c *ProgressController) Track(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if !strings.HasPrefix(ctx.ContentType(), "application/json") {
		ctx.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Content-Type must be application/json"})
		return
	}

	var req TrackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	if msg, ok := validateTrackRequest(&req); !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	event := &service.TrackEvent{
		ChapterID:      req.ChapterID,
		PageID:         req.PageID,
		EventType:      req.EventType,
		PageTitle:      req.PageTitle,
		ScrollPercent:  req.ScrollPercent,
		Seconds:        req.Seconds,
		ExerciseID:     req.ExerciseID,
		ExerciseTitle:  req.ExerciseTitle,
		Code:           req.Code,
		IsCorrect:      req.IsCorrect,
		Score:          req.Score,
		CompletionType: req.CompletionType,
	}

	progress, err := c.ProgressService.Track(user.ID, event)
	if err != nil {
		var vErr *util.ValidationError
		if errors.As(err, &vErr) {
			monitoring.TrackedEvents.WithLabelValues(req.EventType, "rejected").Inc()
			ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}

		monitoring.TrackedEvents.WithLabelValues(req.EventType, "error").Inc()
		logger.Log.Error("Error tracking progress",
			zap.Uint("userID", user.ID),
			zap.String("eventType", req.EventType),
			zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	monitoring.TrackedEvents.WithLabelValues(req.EventType, "ok").Inc()
	ctx.JSON(http.StatusOK, gin.H{"success": true, "progress": progress})
}

// validateTrackRequest enforces the required fields with field-level
// messages and restricts event_type to the known kinds.
func validateTrackRequest(req *TrackRequest) (string, bool) {
	if req.ChapterID == "" {
		return "chapter_id is required", false
	}
	if req.PageID == "" {
		return "page_id is required", false
	}
	if req.EventType == "" {
		return "event_type is required", false
	}

	switch req.EventType {
	case service.EventScroll, service.EventTimeSpent, service.EventExerciseAttempt, service.EventChapterCompleted:
	default:
		return "event_type must be one of scroll, time_spent, exercise_attempt, chapter_completed", false
	}

	if req.EventType == service.EventExerciseAttempt && req.ExerciseID == "" {
		return "exercise_id is required for exercise_attempt events", false
	}
	if req.EventType == service.EventTimeSpent && req.Seconds < 0 {
		return "seconds must not be negative", false
	}

	return "", true
}

// Dashboard godoc
// @Summary Per-user progress dashboard
// @Description The caller's page views and exercises grouped by chapter
// @Tags progress
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserDashboard} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/progress/dashboard [get]
func (c *ProgressController) Dashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.GetUserDashboard(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}
