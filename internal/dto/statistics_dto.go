package dto

import (
	"time"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// TaskSummary identifies the task a statistics block belongs to.
type TaskSummary struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	MaxPoints int    `json:"max_points"`
}

// TaskBasicStats are the headline numbers for one task.
type TaskBasicStats struct {
	TotalStudents    int64    `json:"total_students"`
	TotalSubmissions int64    `json:"total_submissions"`
	AvgPoints        *float64 `json:"avg_points"`
	MinPoints        *int     `json:"min_points"`
	MaxPoints        *int     `json:"max_points"`
	AvgTime          *float64 `json:"avg_time"`
	PassedCount      int64    `json:"passed_count"`
}

// SubmissionHighlight is the best or worst single submission with the
// submitting student's identity.
type SubmissionHighlight struct {
	PointsEarned int       `json:"points_earned"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
}

// HistogramBucket is one bar of the point-range histogram; the range label
// is the inclusive lower bound of a ten-point bucket.
type HistogramBucket struct {
	PointRange int   `json:"point_range"`
	Count      int64 `json:"count"`
}

// TimelinePoint aggregates submissions on a single calendar day.
type TimelinePoint struct {
	Date            string  `json:"date"`
	SubmissionCount int64   `json:"submission_count"`
	AvgPoints       float64 `json:"avg_points"`
}

// StudentResult is the per-student best-score rollup for a task.
type StudentResult struct {
	StudentID      uint       `json:"id"`
	Username       string     `json:"username"`
	FullName       string     `json:"full_name"`
	BestScore      *int       `json:"best_score"`
	Attempts       int64      `json:"attempts"`
	LastSubmission *time.Time `json:"last_submission"`
	HasPassed      bool       `json:"has_passed"`
}

// TaskStatisticsResponse is the full statistics payload for one task.
type TaskStatisticsResponse struct {
	Task            TaskSummary          `json:"task"`
	Statistics      TaskBasicStats       `json:"statistics"`
	BestSubmission  *SubmissionHighlight `json:"best_submission"`
	WorstSubmission *SubmissionHighlight `json:"worst_submission"`
	Distribution    []HistogramBucket    `json:"distribution"`
	Timeline        []TimelinePoint      `json:"timeline"`
	StudentResults  []StudentResult      `json:"student_results"`
}

// DashboardOverview holds cross-task counters for one teacher.
type DashboardOverview struct {
	TotalTasks       int64    `json:"total_tasks"`
	TotalStudents    int64    `json:"total_students"`
	TotalSubmissions int64    `json:"total_submissions"`
	AvgScore         *float64 `json:"avg_score"`
}

// RecentSubmission is one row of the dashboard's latest-activity list.
type RecentSubmission struct {
	ID           uint      `json:"id"`
	TaskID       uint      `json:"task_id"`
	TaskTitle    string    `json:"task_title"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	PointsEarned int       `json:"points_earned"`
	MaxPoints    int       `json:"max_points"`
	IsPassed     bool      `json:"is_passed"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// PopularTask is one entry of the most-submitted-tasks ranking.
type PopularTask struct {
	ID                  uint     `json:"id"`
	Title               string   `json:"title"`
	ProgrammingLanguage string   `json:"programming_language"`
	SubmissionCount     int64    `json:"submission_count"`
	AvgScore            *float64 `json:"avg_score"`
}

// TopStudent is one entry of the students-by-average-score ranking.
type TopStudent struct {
	ID             uint    `json:"id"`
	Username       string  `json:"username"`
	FullName       string  `json:"full_name"`
	TasksCompleted int64   `json:"tasks_completed"`
	AvgScore       float64 `json:"avg_score"`
	TotalTime      int64   `json:"total_time"`
}

// TeacherDashboardResponse is the cross-task overview for one teacher.
type TeacherDashboardResponse struct {
	Overview          DashboardOverview  `json:"overview"`
	RecentSubmissions []RecentSubmission `json:"recent_submissions"`
	PopularTasks      []PopularTask      `json:"popular_tasks"`
	TopStudents       []TopStudent       `json:"top_students"`
	CacheHit          bool               `json:"cache_hit,omitempty"`
}

// StudentInfo identifies the student a statistics block belongs to.
type StudentInfo struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// StudentAggregateStats summarises one student across a teacher's tasks.
type StudentAggregateStats struct {
	TasksAttempted   int64    `json:"tasks_attempted"`
	TotalSubmissions int64    `json:"total_submissions"`
	AvgScore         *float64 `json:"avg_score"`
	TotalTime        int64    `json:"total_time"`
	PassedCount      int64    `json:"passed_count"`
}

// StudentTaskDetail is one per-task row of a student's report.
type StudentTaskDetail struct {
	TaskID              uint       `json:"id"`
	Title               string     `json:"title"`
	ProgrammingLanguage string     `json:"programming_language"`
	MaxPoints           int        `json:"max_points"`
	BestScore           *int       `json:"best_score"`
	Attempts            int64      `json:"attempts"`
	LastAttempt         *time.Time `json:"last_attempt"`
	HasPassed           bool       `json:"has_passed"`
}

// StudentStatsResponse is the full per-student report for a teacher.
type StudentStatsResponse struct {
	Student     StudentInfo           `json:"student"`
	Statistics  StudentAggregateStats `json:"statistics"`
	TaskDetails []StudentTaskDetail   `json:"task_details"`
}

// ActivityQuery narrows the audit stream read.
type ActivityQuery struct {
	UserID       *uint
	ActivityType string
	Limit        int
}

// ActivityEntry is one row of the audit stream, newest first.
type ActivityEntry struct {
	ID           uint                   `json:"id"`
	UserID       uint                   `json:"user_id"`
	ActivityType string                 `json:"activity_type"`
	TaskID       *uint                  `json:"task_id"`
	Details      map[string]interface{} `json:"details"`
	CreatedAt    time.Time              `json:"created_at"`
}

// NewActivityEntry maps an activity log row to its response shape.
func NewActivityEntry(entry models.ActivityLog) ActivityEntry {
	return ActivityEntry{
		ID:           entry.ID,
		UserID:       entry.UserID,
		ActivityType: entry.ActivityType,
		TaskID:       entry.TaskID,
		Details:      map[string]interface{}(entry.Details),
		CreatedAt:    entry.CreatedAt,
	}
}
