package service

import (
	"book_platform_backend/internal/model"
	"book_platform_backend/internal/repository"
	"sort"
	"strings"
	"time"
)

type DashboardService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
}

func NewDashboardService(userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository) *DashboardService {
	return &DashboardService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
	}
}

type PageSummary struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Completed         bool      `json:"completed"`
	CompletionPercent float64   `json:"completionPercent"`
	TimeSpentSeconds  int       `json:"timeSpentSeconds"`
	LastViewedAt      time.Time `json:"lastViewedAt"`
}

type ExerciseSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	Attempts  int      `json:"attempts"`
	Score     *float64 `json:"score,omitempty"`
}

type ChapterSummary struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Pages              []PageSummary     `json:"pages"`
	TotalPages         int               `json:"totalPages"`
	CompletedPages     int               `json:"completedPages"`
	Exercises          []ExerciseSummary `json:"exercises"`
	CompletedExercises int               `json:"completedExercises"`
}

type UserDashboard struct {
	Progress *model.UserProgress `json:"progress"`
	Chapters []ChapterSummary    `json:"chapters"`
}

// GetUserDashboard is the self-service reporting view: the caller's page
// views and exercises grouped by chapter. The progress row is created
// lazily when a user opens the dashboard before sending any event.
func (s *DashboardService) GetUserDashboard(userID uint) (*UserDashboard, error) {
	progress, err := s.ProgressRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	views, err := s.ProgressRepo.PageViewsByUser(userID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.ProgressRepo.ExercisesByUser(userID)
	if err != nil {
		return nil, err
	}

	chapters := map[string]*ChapterSummary{}
	for _, v := range views {
		ch, ok := chapters[v.ChapterID]
		if !ok {
			ch = &ChapterSummary{
				ID:    v.ChapterID,
				Title: chapterTitle(v.ChapterID),
			}
			chapters[v.ChapterID] = ch
		}

		ch.Pages = append(ch.Pages, PageSummary{
			ID:                v.PageID,
			Title:             v.PageTitle,
			Completed:         v.IsCompleted,
			CompletionPercent: v.CompletionPercent,
			TimeSpentSeconds:  v.TimeSpentSeconds,
			LastViewedAt:      v.LastViewedAt,
		})
		ch.TotalPages++
		if v.IsCompleted {
			ch.CompletedPages++
		}
	}

	for _, ex := range exercises {
		ch, ok := chapters[ex.ChapterID]
		if !ok {
			continue
		}
		ch.Exercises = append(ch.Exercises, ExerciseSummary{
			ID:        ex.ExerciseID,
			Title:     ex.ExerciseTitle,
			Completed: ex.IsCompleted,
			Attempts:  ex.Attempts,
			Score:     ex.Score,
		})
		if ex.IsCompleted {
			ch.CompletedExercises++
		}
	}

	list := make([]ChapterSummary, 0, len(chapters))
	for _, ch := range chapters {
		list = append(list, *ch)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return &UserDashboard{
		Progress: progress,
		Chapters: list,
	}, nil
}

type AdminUserSummary struct {
	ID                 uint      `json:"id"`
	Username           string    `json:"username"`
	FullName           string    `json:"fullName"`
	ProgressPercent    float64   `json:"progressPercent"`
	ChaptersViewed     int       `json:"chaptersViewed"`
	PagesViewed        int       `json:"pagesViewed"`
	ExercisesCompleted int       `json:"exercisesCompleted"`
	LastActiveAt       time.Time `json:"lastActiveAt"`
}

type AdminChapterStats struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	TotalViews     int     `json:"totalViews"`
	Completions    int     `json:"completions"`
	UniqueUsers    int     `json:"uniqueUsers"`
	CompletionRate float64 `json:"completionRate"`
}

type AdminDashboard struct {
	Users    []AdminUserSummary  `json:"users"`
	Chapters []AdminChapterStats `json:"chapters"`
}

// GetAdminDashboard aggregates progress across all users by full scan and
// in-memory grouping. Users without a progress row are skipped.
func (s *DashboardService) GetAdminDashboard() (*AdminDashboard, error) {
	users, err := s.UserRepo.FindAllWithProgress()
	if err != nil {
		return nil, err
	}

	summaries := []AdminUserSummary{}
	for _, u := range users {
		if u.Progress == nil {
			continue
		}
		summaries = append(summaries, AdminUserSummary{
			ID:                 u.ID,
			Username:           u.Username,
			FullName:           u.FullName(),
			ProgressPercent:    u.Progress.OverallProgressPercent,
			ChaptersViewed:     u.Progress.TotalChaptersViewed,
			PagesViewed:        u.Progress.TotalPagesViewed,
			ExercisesCompleted: u.Progress.TotalExercisesChecked,
			LastActiveAt:       u.Progress.LastActivityAt,
		})
	}

	views, err := s.ProgressRepo.AllPageViews()
	if err != nil {
		return nil, err
	}

	stats := map[string]*AdminChapterStats{}
	chapterUsers := map[string]map[uint]bool{}
	for _, v := range views {
		st, ok := stats[v.ChapterID]
		if !ok {
			st = &AdminChapterStats{
				ID:    v.ChapterID,
				Title: chapterTitle(v.ChapterID),
			}
			stats[v.ChapterID] = st
			chapterUsers[v.ChapterID] = map[uint]bool{}
		}

		st.TotalViews++
		chapterUsers[v.ChapterID][v.UserID] = true
		if v.IsCompleted {
			st.Completions++
		}
	}

	chapters := make([]AdminChapterStats, 0, len(stats))
	for id, st := range stats {
		st.UniqueUsers = len(chapterUsers[id])
		if st.TotalViews > 0 {
			st.CompletionRate = float64(st.Completions) / float64(st.TotalViews) * 100
		}
		chapters = append(chapters, *st)
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].ID < chapters[j].ID })

	return &AdminDashboard{
		Users:    summaries,
		Chapters: chapters,
	}, nil
}

// chapterTitle derives a display title from an id like "chapter_1".
func chapterTitle(chapterID string) string {
	words := strings.Split(strings.ReplaceAll(chapterID, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
