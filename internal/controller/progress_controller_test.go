package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRejectsAnonymous(t *testing.T) {
	s := newTestStack(t)

	w := s.request(t, http.MethodPost, "/api/progress/track", "", gin.H{
		"chapter_id": "chapter_1",
		"page_id":    "page_1",
		"event_type": "scroll",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "User not authenticated"}`, w.Body.String())
}

func TestTrackRejectsNonJSONBody(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "reader")

	req := httptest.NewRequest(http.MethodPost, "/api/progress/track",
		strings.NewReader("chapter_id=chapter_1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestTrackRejectsEmptyBody(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "reader")

	req := httptest.NewRequest(http.MethodPost, "/api/progress/track", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "No data provided"}`, w.Body.String())
}

func TestTrackFieldValidation(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "reader")

	cases := []struct {
		name string
		body gin.H
		want string
	}{
		{
			"missing chapter_id",
			gin.H{"page_id": "page_1", "event_type": "scroll"},
			"chapter_id is required",
		},
		{
			"missing page_id",
			gin.H{"chapter_id": "chapter_1", "event_type": "scroll"},
			"page_id is required",
		},
		{
			"missing event_type",
			gin.H{"chapter_id": "chapter_1", "page_id": "page_1"},
			"event_type is required",
		},
		{
			"unknown event_type",
			gin.H{"chapter_id": "chapter_1", "page_id": "page_1", "event_type": "teleport"},
			"event_type must be one of scroll, time_spent, exercise_attempt, chapter_completed",
		},
		{
			"exercise without id",
			gin.H{"chapter_id": "chapter_1", "page_id": "page_1", "event_type": "exercise_attempt"},
			"exercise_id is required for exercise_attempt events",
		},
		{
			"negative seconds",
			gin.H{"chapter_id": "chapter_1", "page_id": "page_1", "event_type": "time_spent", "seconds": -5},
			"seconds must not be negative",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.request(t, http.MethodPost, "/api/progress/track", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tc.want, body["error"])
		})
	}
}

func TestTrackSuccessShape(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "reader")

	w := s.request(t, http.MethodPost, "/api/progress/track", token, gin.H{
		"chapter_id":     "chapter_1",
		"page_id":        "page_1",
		"event_type":     "scroll",
		"scroll_percent": 95,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	// One of ten chapters completed, worth 70% of the total.
	assert.InDelta(t, 7.0, body["progress"], 0.001)
}

func TestTrackThenDashboard(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "reader")

	for _, body := range []gin.H{
		{"chapter_id": "chapter_1", "page_id": "page_1", "event_type": "scroll", "scroll_percent": 95},
		{"chapter_id": "chapter_1", "page_id": "page_1", "event_type": "time_spent", "seconds": 120},
		{"chapter_id": "chapter_1", "page_id": "page_1", "event_type": "exercise_attempt",
			"exercise_id": "ex_1", "is_correct": true},
	} {
		w := s.request(t, http.MethodPost, "/api/progress/track", token, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.request(t, http.MethodGet, "/api/progress/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Progress struct {
				OverallProgressPercent float64 `json:"overallProgressPercent"`
			} `json:"progress"`
			Chapters []struct {
				ID                 string `json:"id"`
				CompletedPages     int    `json:"completedPages"`
				CompletedExercises int    `json:"completedExercises"`
			} `json:"chapters"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 37.0, resp.Data.Progress.OverallProgressPercent, 0.001)
	require.Len(t, resp.Data.Chapters, 1)
	assert.Equal(t, "chapter_1", resp.Data.Chapters[0].ID)
	assert.Equal(t, 1, resp.Data.Chapters[0].CompletedPages)
	assert.Equal(t, 1, resp.Data.Chapters[0].CompletedExercises)
}

func TestDashboardRequiresAuth(t *testing.T) {
	s := newTestStack(t)

	w := s.request(t, http.MethodGet, "/api/progress/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body := decodeBody(t, w)
	// The 401 echoes the requested path so the client can come back.
	assert.Equal(t, "/api/progress/dashboard", body["next"])
}
