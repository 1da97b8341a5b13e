package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/config"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/database"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/handler"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/middleware"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/views"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := config.Config{
		AppName:           "Code Lab API",
		AppEnv:            "test",
		SessionLifetime:   24 * time.Hour,
		SessionCookieName: "session_token",
		AdminCookieName:   "dashboard_session",
		PasswordMinLength: 6,
		DashboardCacheTTL: 5 * time.Minute,
	}

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	tasks := repository.NewTaskRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	activity := repository.NewActivityLogRepository(db)
	students := repository.NewStudentRepository(db)
	exercises := repository.NewExerciseRepository(db)
	admins := repository.NewAdminRepository(db)

	authService := service.NewAuthService(users, sessions, tasks, assignments, submissions, activity, cfg.SessionLifetime, cfg.PasswordMinLength, logger)
	taskService := service.NewTaskService(tasks, assignments, submissions, users, activity, logger)
	submissionService := service.NewSubmissionService(submissions, tasks, assignments, activity, logger)
	statisticsService := service.NewStatisticsService(tasks, assignments, submissions, users, activity, nil, cfg.DashboardCacheTTL, logger)
	trackerService := service.NewTrackerService(students, exercises, logger)
	dashboardService := service.NewDashboardService(admins, exercises, cfg.SessionLifetime, logger)
	require.NoError(t, dashboardService.EnsureDefaultAdmin(context.Background(), "admin", "secreto"))

	app := fiber.New(fiber.Config{Views: views.Engine()})
	middleware.Register(app, middleware.Config{Logger: &logger})
	Register(app, cfg, Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, validate, cfg.SessionCookieName, logger),
		TaskHandler:       handler.NewTaskHandler(taskService, validate, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, validate, logger),
		StatisticsHandler: handler.NewStatisticsHandler(statisticsService, logger),
		TrackerHandler:    handler.NewTrackerHandler(trackerService, validate, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, validate, cfg.AdminCookieName, logger),
		SessionAuth:       middleware.SessionAuth(authService, cfg.SessionCookieName),
		AdminSession:      middleware.AdminSession(dashboardService, cfg.AdminCookieName),
	})

	return app, db
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func registerAccount(t *testing.T, app *fiber.App, username, role string) (uint, string) {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "geheim123",
		"role":      role,
		"full_name": username,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	return uint(data["user_id"].(float64)), data["session_token"].(string)
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
}

func TestRegisterAndDuplicateConflict(t *testing.T) {
	app, _ := newTestApp(t)

	userID, token := registerAccount(t, app, "mara", "student")
	require.NotZero(t, userID)
	require.Len(t, token, 32)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"username":  "mara",
		"email":     "mara2@example.com",
		"password":  "geheim123",
		"role":      "student",
		"full_name": "Mara",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Benutzername oder E-Mail bereits vergeben", body["message"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(withToken(httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil), strings.Repeat("f", 32)))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStudentsCannotCreateTasks(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerAccount(t, app, "mara", "student")

	resp, err := app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":                "Schleifen",
		"programming_language": "python",
		"task_content":         "Schreibe eine Schleife.",
	}), token))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSharedTaskLookupIsPublic(t *testing.T) {
	app, _ := newTestApp(t)
	_, teacherToken := registerAccount(t, app, "lehrer", "teacher")

	resp, err := app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":                "Schleifen",
		"programming_language": "python",
		"task_content":         "Schreibe eine Schleife.",
	}), teacherToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["data"].(map[string]interface{})
	shareCode := created["share_code"].(string)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/shared/"+shareCode, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	shared := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, "Schleifen", shared["title"])
	require.Nil(t, shared["task_content"], "share view must not leak the task body")
}

func TestSubmissionForUnassignedTaskIsRejected(t *testing.T) {
	app, _ := newTestApp(t)
	_, teacherToken := registerAccount(t, app, "lehrer", "teacher")
	_, studentToken := registerAccount(t, app, "mara", "student")

	resp, err := app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":                "Schleifen",
		"programming_language": "python",
		"task_content":         "Schreibe eine Schleife.",
	}), teacherToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["data"].(map[string]interface{})
	taskID := created["task_id"].(float64)

	resp, err = app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/submissions", map[string]interface{}{
		"task_id":       taskID,
		"code_solution": "x = 1",
	}), studentToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "Aufgabe nicht zugewiesen", body["message"])
}

func TestSubmissionFlowAfterAssignment(t *testing.T) {
	app, _ := newTestApp(t)
	_, teacherToken := registerAccount(t, app, "lehrer", "teacher")
	studentID, studentToken := registerAccount(t, app, "mara", "student")

	resp, err := app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":                "Schleifen",
		"programming_language": "python",
		"task_content":         "Schreibe eine Schleife.",
		"expected_output":      "Hallo Welt",
	}), teacherToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["data"].(map[string]interface{})
	taskID := created["task_id"].(float64)

	resp, err = app.Test(withToken(jsonRequest(http.MethodPost, fmt.Sprintf("/api/v1/tasks/%.0f/assign", taskID), map[string]interface{}{
		"student_ids": []uint{studentID},
	}), teacherToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/submissions", map[string]interface{}{
		"task_id":          taskID,
		"code_solution":    `print("Hallo Welt")`,
		"execution_output": "Hallo Welt",
	}), studentToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	result := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, float64(100), result["points_earned"])
	require.Equal(t, true, result["is_passed"])
}

func TestStatisticsAreTeacherOnly(t *testing.T) {
	app, _ := newTestApp(t)
	_, studentToken := registerAccount(t, app, "mara", "student")

	resp, err := app.Test(withToken(httptest.NewRequest(http.MethodGet, "/api/v1/statistics/dashboard", nil), studentToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "Keine Berechtigung für diese Aktion", body["message"])
}

func TestTrackerEndpointsArePublic(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/ejercicios/students", map[string]interface{}{
		"full_name": "Ana López",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	require.Equal(t, true, data["new"])
	student := data["student"].(map[string]interface{})
	require.Equal(t, "Ana", student["first_name"])
}

func TestDashboardRedirectsWithoutSession(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard/login", resp.Header.Get(fiber.HeaderLocation))
}

func TestDashboardLoginFormFlow(t *testing.T) {
	app, _ := newTestApp(t)

	form := url.Values{"username": {"admin"}, "password": {"secreto"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "dashboard_session" {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	require.True(t, sessionCookie.HttpOnly)

	pageReq := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	pageReq.AddCookie(sessionCookie)
	resp, err = app.Test(pageReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(page), "Ejercicios Didácticos")
}

func TestDashboardLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)

	form := url.Values{"username": {"admin"}, "password": {"falsch"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(page), "Credenciales inválidas")
}

func TestLogoutIsIdempotent(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerAccount(t, app, "mara", "student")

	resp, err := app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/auth/logout", nil), token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/auth/logout", nil), token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Abmeldung erfolgreich", body["message"])
}

func TestLogoutWithUnknownTokenSucceeds(t *testing.T) {
	app, _ := newTestApp(t)

	token := "deadbeefdeadbeefdeadbeefdeadbeef"
	resp, err := app.Test(withToken(jsonRequest(http.MethodPost, "/api/v1/auth/logout", nil), token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Abmeldung erfolgreich", body["message"])
}

func TestLogoutWithoutTokenIsRejected(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestActivityFeedRequiresTeacher(t *testing.T) {
	app, _ := newTestApp(t)
	_, studentToken := registerAccount(t, app, "mara", "student")
	_, teacherToken := registerAccount(t, app, "lehrer", "teacher")

	resp, err := app.Test(withToken(httptest.NewRequest(http.MethodGet, "/api/v1/statistics/activity", nil), studentToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(withToken(httptest.NewRequest(http.MethodGet, "/api/v1/statistics/activity", nil), teacherToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
}
