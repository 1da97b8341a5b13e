package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
)

const (
	recentSubmissionLimit = 10
	popularTaskLimit      = 5
	topStudentLimit       = 10
	activityDefaultLimit  = 50
	activityMaxLimit      = 200
)

// StatisticsService aggregates reporting data for teachers.
type StatisticsService interface {
	TaskStatistics(ctx context.Context, taskID, teacherID uint) (dto.TaskStatisticsResponse, error)
	TeacherDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error)
	StudentStatistics(ctx context.Context, teacherID, studentID uint) (dto.StudentStatsResponse, error)
	RecentActivity(ctx context.Context, query dto.ActivityQuery) ([]dto.ActivityEntry, error)
}

type statisticsService struct {
	tasks       repository.TaskRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	activities  repository.ActivityLogRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStatisticsService constructs the statistics service. The cache client
// may be nil, in which case every call aggregates from the store.
func NewStatisticsService(
	tasks repository.TaskRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	activities repository.ActivityLogRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) StatisticsService {
	return &statisticsService{
		tasks:       tasks,
		assignments: assignments,
		submissions: submissions,
		users:       users,
		activities:  activities,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "statistics_service").Logger(),
	}
}

func (s *statisticsService) TaskStatistics(ctx context.Context, taskID, teacherID uint) (dto.TaskStatisticsResponse, error) {
	tracer := otel.Tracer("github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service/statistics")
	ctx, span := tracer.Start(ctx, "statistics.task")
	span.SetAttributes(attribute.Int64("task.id", int64(taskID)))
	defer span.End()

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskStatisticsResponse{}, ErrTaskNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_task_failed")
		return dto.TaskStatisticsResponse{}, fmt.Errorf("load task: %w", err)
	}
	if task.TeacherID != teacherID {
		return dto.TaskStatisticsResponse{}, ErrTaskForbidden
	}

	submissions, err := s.submissions.ListByTask(ctx, taskID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_submissions_failed")
		return dto.TaskStatisticsResponse{}, fmt.Errorf("list submissions: %w", err)
	}
	span.SetAttributes(attribute.Int("statistics.submission_count", len(submissions)))

	response := dto.TaskStatisticsResponse{
		Task: dto.TaskSummary{
			ID:        task.ID,
			Title:     task.Title,
			MaxPoints: task.MaxPoints,
		},
		Statistics:     buildTaskBasicStats(submissions),
		Distribution:   buildHistogram(submissions),
		Timeline:       buildTimeline(submissions),
		StudentResults: buildStudentResults(submissions),
	}
	response.BestSubmission, response.WorstSubmission = pickHighlights(submissions)

	return response, nil
}

// TeacherDashboard aggregates the teacher's cross-task overview, served from
// the cache when a fresh entry exists for the teacher.
func (s *statisticsService) TeacherDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error) {
	cacheKey := fmt.Sprintf("statistics:dashboard:%d", teacherID)
	tracer := otel.Tracer("github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service/statistics")
	ctx, span := tracer.Start(ctx, "statistics.dashboard")
	span.SetAttributes(attribute.String("statistics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.TeacherDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("statistics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	tasks, err := s.tasks.ListByTeacher(ctx, teacherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_tasks_failed")
		return dto.TeacherDashboardResponse{}, fmt.Errorf("list tasks: %w", err)
	}

	students, err := s.assignments.CountDistinctStudentsByTeacher(ctx, teacherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_students_failed")
		return dto.TeacherDashboardResponse{}, fmt.Errorf("count students: %w", err)
	}

	submissions, err := s.submissions.ListByTeacher(ctx, teacherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_submissions_failed")
		return dto.TeacherDashboardResponse{}, fmt.Errorf("list submissions: %w", err)
	}
	span.SetAttributes(
		attribute.Int("statistics.task_count", len(tasks)),
		attribute.Int("statistics.submission_count", len(submissions)),
	)

	response := s.buildDashboard(tasks, students, submissions)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *statisticsService) StudentStatistics(ctx context.Context, teacherID, studentID uint) (dto.StudentStatsResponse, error) {
	student, err := s.users.GetStudentByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentStatsResponse{}, ErrUserNotFound
		}
		return dto.StudentStatsResponse{}, fmt.Errorf("load student: %w", err)
	}

	submissions, err := s.submissions.ListByTeacherAndStudent(ctx, teacherID, studentID)
	if err != nil {
		return dto.StudentStatsResponse{}, fmt.Errorf("list submissions: %w", err)
	}

	response := dto.StudentStatsResponse{
		Student: dto.StudentInfo{
			ID:        student.ID,
			Username:  student.Username,
			FullName:  student.FullName,
			Email:     student.Email,
			CreatedAt: student.CreatedAt,
			LastLogin: student.LastLogin,
		},
		Statistics:  buildStudentAggregate(submissions),
		TaskDetails: buildStudentTaskDetails(submissions),
	}
	return response, nil
}

// RecentActivity reads the audit stream, newest entries first.
func (s *statisticsService) RecentActivity(ctx context.Context, query dto.ActivityQuery) ([]dto.ActivityEntry, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = activityDefaultLimit
	}
	if limit > activityMaxLimit {
		limit = activityMaxLimit
	}

	entries, err := s.activities.List(ctx, repository.ActivityLogFilter{
		UserID:       query.UserID,
		ActivityType: query.ActivityType,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	responses := make([]dto.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityEntry(entry))
	}
	return responses, nil
}

func buildTaskBasicStats(submissions []models.Submission) dto.TaskBasicStats {
	stats := dto.TaskBasicStats{TotalSubmissions: int64(len(submissions))}
	if len(submissions) == 0 {
		return stats
	}

	students := make(map[uint]struct{})
	totalPoints := 0
	totalTime := 0
	minPoints := submissions[0].PointsEarned
	maxPoints := submissions[0].PointsEarned
	for _, submission := range submissions {
		students[submission.StudentID] = struct{}{}
		totalPoints += submission.PointsEarned
		totalTime += submission.TimeSpent
		if submission.PointsEarned < minPoints {
			minPoints = submission.PointsEarned
		}
		if submission.PointsEarned > maxPoints {
			maxPoints = submission.PointsEarned
		}
		if submission.IsPassed {
			stats.PassedCount++
		}
	}

	stats.TotalStudents = int64(len(students))
	avg := float64(totalPoints) / float64(len(submissions))
	stats.AvgPoints = &avg
	avgTime := float64(totalTime) / float64(len(submissions))
	stats.AvgTime = &avgTime
	stats.MinPoints = &minPoints
	stats.MaxPoints = &maxPoints
	return stats
}

// pickHighlights selects the best and worst single submissions. Ties on
// points go to the earlier submission for best and the later one for worst.
func pickHighlights(submissions []models.Submission) (*dto.SubmissionHighlight, *dto.SubmissionHighlight) {
	if len(submissions) == 0 {
		return nil, nil
	}

	best := submissions[0]
	worst := submissions[0]
	for _, submission := range submissions[1:] {
		if submission.PointsEarned > best.PointsEarned ||
			(submission.PointsEarned == best.PointsEarned && submission.SubmittedAt.Before(best.SubmittedAt)) {
			best = submission
		}
		if submission.PointsEarned < worst.PointsEarned ||
			(submission.PointsEarned == worst.PointsEarned && submission.SubmittedAt.After(worst.SubmittedAt)) {
			worst = submission
		}
	}

	return newHighlight(best), newHighlight(worst)
}

func newHighlight(submission models.Submission) *dto.SubmissionHighlight {
	return &dto.SubmissionHighlight{
		PointsEarned: submission.PointsEarned,
		SubmittedAt:  submission.SubmittedAt,
		Username:     submission.Student.Username,
		FullName:     submission.Student.FullName,
	}
}

func buildHistogram(submissions []models.Submission) []dto.HistogramBucket {
	buckets := map[int]int64{}
	for _, submission := range submissions {
		bucket := (submission.PointsEarned / models.HistogramBucketSize) * models.HistogramBucketSize
		buckets[bucket]++
	}

	ranges := make([]int, 0, len(buckets))
	for bucket := range buckets {
		ranges = append(ranges, bucket)
	}
	sort.Ints(ranges)

	distribution := make([]dto.HistogramBucket, 0, len(ranges))
	for _, bucket := range ranges {
		distribution = append(distribution, dto.HistogramBucket{PointRange: bucket, Count: buckets[bucket]})
	}
	return distribution
}

func buildTimeline(submissions []models.Submission) []dto.TimelinePoint {
	type dayAgg struct {
		count  int64
		points int
	}
	days := map[string]*dayAgg{}
	for _, submission := range submissions {
		day := submission.SubmittedAt.Format("2006-01-02")
		agg, ok := days[day]
		if !ok {
			agg = &dayAgg{}
			days[day] = agg
		}
		agg.count++
		agg.points += submission.PointsEarned
	}

	dates := make([]string, 0, len(days))
	for day := range days {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	timeline := make([]dto.TimelinePoint, 0, len(dates))
	for _, day := range dates {
		agg := days[day]
		timeline = append(timeline, dto.TimelinePoint{
			Date:            day,
			SubmissionCount: agg.count,
			AvgPoints:       float64(agg.points) / float64(agg.count),
		})
	}
	return timeline
}

// buildStudentResults rolls submissions up per student, best score first;
// equal scores rank the earlier last submission higher.
func buildStudentResults(submissions []models.Submission) []dto.StudentResult {
	perStudent := map[uint]*dto.StudentResult{}
	for _, submission := range submissions {
		result, ok := perStudent[submission.StudentID]
		if !ok {
			result = &dto.StudentResult{
				StudentID: submission.StudentID,
				Username:  submission.Student.Username,
				FullName:  submission.Student.FullName,
			}
			perStudent[submission.StudentID] = result
		}
		result.Attempts++
		if result.BestScore == nil || submission.PointsEarned > *result.BestScore {
			score := submission.PointsEarned
			result.BestScore = &score
		}
		if result.LastSubmission == nil || submission.SubmittedAt.After(*result.LastSubmission) {
			at := submission.SubmittedAt
			result.LastSubmission = &at
		}
		if submission.IsPassed {
			result.HasPassed = true
		}
	}

	results := make([]dto.StudentResult, 0, len(perStudent))
	for _, result := range perStudent {
		results = append(results, *result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		aScore, bScore := 0, 0
		if a.BestScore != nil {
			aScore = *a.BestScore
		}
		if b.BestScore != nil {
			bScore = *b.BestScore
		}
		if aScore != bScore {
			return aScore > bScore
		}
		switch {
		case a.LastSubmission == nil:
			return false
		case b.LastSubmission == nil:
			return true
		default:
			return a.LastSubmission.Before(*b.LastSubmission)
		}
	})
	return results
}

func (s *statisticsService) buildDashboard(tasks []models.Task, students int64, submissions []models.Submission) dto.TeacherDashboardResponse {
	overview := dto.DashboardOverview{
		TotalTasks:       int64(len(tasks)),
		TotalStudents:    students,
		TotalSubmissions: int64(len(submissions)),
	}
	if len(submissions) > 0 {
		total := 0
		for _, submission := range submissions {
			total += submission.PointsEarned
		}
		avg := float64(total) / float64(len(submissions))
		overview.AvgScore = &avg
	}

	recent := make([]dto.RecentSubmission, 0, recentSubmissionLimit)
	for _, submission := range submissions {
		if len(recent) == recentSubmissionLimit {
			break
		}
		recent = append(recent, dto.RecentSubmission{
			ID:           submission.ID,
			TaskID:       submission.TaskID,
			TaskTitle:    submission.Task.Title,
			Username:     submission.Student.Username,
			FullName:     submission.Student.FullName,
			PointsEarned: submission.PointsEarned,
			MaxPoints:    submission.MaxPoints,
			IsPassed:     submission.IsPassed,
			SubmittedAt:  submission.SubmittedAt,
		})
	}

	return dto.TeacherDashboardResponse{
		Overview:          overview,
		RecentSubmissions: recent,
		PopularTasks:      buildPopularTasks(tasks, submissions),
		TopStudents:       buildTopStudents(submissions),
		CacheHit:          false,
	}
}

func buildPopularTasks(tasks []models.Task, submissions []models.Submission) []dto.PopularTask {
	type taskAgg struct {
		count  int64
		points int
	}
	perTask := map[uint]*taskAgg{}
	for _, submission := range submissions {
		agg, ok := perTask[submission.TaskID]
		if !ok {
			agg = &taskAgg{}
			perTask[submission.TaskID] = agg
		}
		agg.count++
		agg.points += submission.PointsEarned
	}

	popular := make([]dto.PopularTask, 0, len(tasks))
	for _, task := range tasks {
		agg, ok := perTask[task.ID]
		if !ok {
			continue
		}
		avg := float64(agg.points) / float64(agg.count)
		popular = append(popular, dto.PopularTask{
			ID:                  task.ID,
			Title:               task.Title,
			ProgrammingLanguage: task.ProgrammingLanguage,
			SubmissionCount:     agg.count,
			AvgScore:            &avg,
		})
	}

	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].SubmissionCount > popular[j].SubmissionCount
	})
	if len(popular) > popularTaskLimit {
		popular = popular[:popularTaskLimit]
	}
	return popular
}

func buildTopStudents(submissions []models.Submission) []dto.TopStudent {
	type studentAgg struct {
		student dto.TopStudent
		tasks   map[uint]struct{}
		points  int
		count   int64
	}
	perStudent := map[uint]*studentAgg{}
	for _, submission := range submissions {
		agg, ok := perStudent[submission.StudentID]
		if !ok {
			agg = &studentAgg{
				student: dto.TopStudent{
					ID:       submission.StudentID,
					Username: submission.Student.Username,
					FullName: submission.Student.FullName,
				},
				tasks: map[uint]struct{}{},
			}
			perStudent[submission.StudentID] = agg
		}
		agg.tasks[submission.TaskID] = struct{}{}
		agg.points += submission.PointsEarned
		agg.count++
		agg.student.TotalTime += int64(submission.TimeSpent)
	}

	top := make([]dto.TopStudent, 0, len(perStudent))
	for _, agg := range perStudent {
		agg.student.TasksCompleted = int64(len(agg.tasks))
		agg.student.AvgScore = float64(agg.points) / float64(agg.count)
		top = append(top, agg.student)
	}

	sort.SliceStable(top, func(i, j int) bool {
		if top[i].AvgScore != top[j].AvgScore {
			return top[i].AvgScore > top[j].AvgScore
		}
		return top[i].ID < top[j].ID
	})
	if len(top) > topStudentLimit {
		top = top[:topStudentLimit]
	}
	return top
}

func buildStudentAggregate(submissions []models.Submission) dto.StudentAggregateStats {
	stats := dto.StudentAggregateStats{TotalSubmissions: int64(len(submissions))}
	if len(submissions) == 0 {
		return stats
	}

	tasks := make(map[uint]struct{})
	totalPoints := 0
	for _, submission := range submissions {
		tasks[submission.TaskID] = struct{}{}
		totalPoints += submission.PointsEarned
		stats.TotalTime += int64(submission.TimeSpent)
		if submission.IsPassed {
			stats.PassedCount++
		}
	}
	stats.TasksAttempted = int64(len(tasks))
	avg := float64(totalPoints) / float64(len(submissions))
	stats.AvgScore = &avg
	return stats
}

func buildStudentTaskDetails(submissions []models.Submission) []dto.StudentTaskDetail {
	perTask := map[uint]*dto.StudentTaskDetail{}
	for _, submission := range submissions {
		detail, ok := perTask[submission.TaskID]
		if !ok {
			detail = &dto.StudentTaskDetail{
				TaskID:              submission.TaskID,
				Title:               submission.Task.Title,
				ProgrammingLanguage: submission.Task.ProgrammingLanguage,
				MaxPoints:           submission.Task.MaxPoints,
			}
			perTask[submission.TaskID] = detail
		}
		detail.Attempts++
		if detail.BestScore == nil || submission.PointsEarned > *detail.BestScore {
			score := submission.PointsEarned
			detail.BestScore = &score
		}
		if detail.LastAttempt == nil || submission.SubmittedAt.After(*detail.LastAttempt) {
			at := submission.SubmittedAt
			detail.LastAttempt = &at
		}
		if submission.IsPassed {
			detail.HasPassed = true
		}
	}

	details := make([]dto.StudentTaskDetail, 0, len(perTask))
	for _, detail := range perTask {
		details = append(details, *detail)
	}
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i].LastAttempt, details[j].LastAttempt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return details
}
