package httpd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robocoin/api/internal/config"
	"github.com/robocoin/api/internal/delivery/httpd"
	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository/memory"
	"github.com/robocoin/api/internal/service"
)

const (
	jwtSecret       = "0123456789abcdef0123456789abcdef"
	teacherPassword = "ustoz-parol"
	studentPassword = "ali-parol"
)

type nopDB struct{}

func (nopDB) PingContext(context.Context) error { return nil }

type env struct {
	router  *chi.Mux
	store   *memory.Store
	group   models.Group
	teacher models.User
	student models.User
}

// newEnv wires the full HTTP stack against the in-memory store, with one
// teacher and one student ready to log in.
func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	logger := zerolog.Nop()

	ledger := service.NewLedgerService(store.Transactions(), 1000, logger)
	ranking := service.NewRankingService(store.Users(), store.Transactions(), store.Groups(), logger)

	services := httpd.Services{
		Auth:        service.NewAuthService(store.Users(), jwtSecret, time.Hour, logger),
		Students:    service.NewStudentService(store.Users(), store.Groups(), store.Attendance(), ledger, 12, bcrypt.MinCost, logger),
		Groups:      service.NewGroupService(store.Groups(), 10, logger),
		Attendance:  service.NewAttendanceService(store.Attendance(), store.Groups(), store.Users(), ledger, 1, logger),
		Assignments: service.NewAssignmentService(store.Assignments(), store.Submissions(), store.Groups(), store.Users(), ledger, 100, logger),
		Shop:        service.NewShopService(store.Shop(), store.Rewards(), store.Users(), ledger, logger),
		Rankings:    ranking,
		Dashboards:  service.NewDashboardService(store.Users(), store.Groups(), store.Transactions(), store.Attendance(), ranking, logger),
		Profiles:    service.NewProfileService(store.Users(), store.Groups(), nil, 1<<20, logger),
		Messages:    service.NewMessageService(store.Messages(), store.Users(), logger),
		Exports:     service.NewExportService(store.Attendance(), store.Transactions(), store.Groups(), logger),
		Ledger:      ledger,
	}

	handler := httpd.NewHandler(services, nopDB{}, config.RateLimitConfig{}, logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	e := &env{router: router, store: store}
	e.group = models.Group{ID: uuid.NewString(), Name: "Alpha", CreatedAt: time.Now().UTC()}
	store.AddGroup(e.group)
	e.teacher = e.seedUser(t, "Ustoz", "ustoz", teacherPassword, models.RoleTeacher, nil)
	e.student = e.seedUser(t, "Ali", "ali_valiyev", studentPassword, models.RoleStudent, &e.group.ID)
	return e
}

func (e *env) seedUser(t *testing.T, name, login, password string, role models.Role, groupID *string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		ID:           uuid.NewString(),
		Role:         role,
		Name:         name,
		Login:        login,
		PasswordHash: string(hash),
		GroupID:      groupID,
		TotalCoins:   decimal.Zero,
		AvatarIcon:   "robot1",
		AvatarColor:  "blue",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	e.store.AddUser(user)
	return user
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T, login, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Login: login, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool                 `json:"success"`
		Data    models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// unwrap decodes the {"success":true,"data":...} envelope into out.
func unwrap(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.True(t, envelope.Success, rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

func errMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Message
}

func TestHealthCheck(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	token := e.login(t, "ali_valiyev", studentPassword)
	assert.NotEmpty(t, token)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
		wantMsg  string
	}{
		{
			name:     "wrong password",
			body:     models.LoginRequest{Login: "ali_valiyev", Password: "mistake1"},
			wantCode: http.StatusUnauthorized,
			wantMsg:  "invalid login or password",
		},
		{
			name:     "unknown login",
			body:     models.LoginRequest{Login: "nobody99", Password: "whatever1"},
			wantCode: http.StatusUnauthorized,
			wantMsg:  "invalid login or password",
		},
		{
			name:     "missing password",
			body:     models.LoginRequest{Login: "ali_valiyev"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "password failed on required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, errMessage(t, rec))
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", errMessage(t, rec))
	})
}

func TestAuthenticate(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing bearer token", errMessage(t, rec))

	rec = e.do(t, http.MethodGet, "/api/v1/auth/me", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired token", errMessage(t, rec))

	token := e.login(t, "ali_valiyev", studentPassword)
	rec = e.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.User
	unwrap(t, rec, &me)
	assert.Equal(t, e.student.ID, me.ID)
	assert.Equal(t, "ali_valiyev", me.Login)
}

func TestRoleGates(t *testing.T) {
	e := newEnv(t)
	teacherToken := e.login(t, "ustoz", teacherPassword)
	studentToken := e.login(t, "ali_valiyev", studentPassword)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"student on teacher route", http.MethodGet, "/api/v1/students", studentToken},
		{"student saving attendance", http.MethodPost, "/api/v1/attendance", studentToken},
		{"student exporting", http.MethodGet, "/api/v1/export/attendance.csv", studentToken},
		{"teacher on student dashboard", http.MethodGet, "/api/v1/dashboard/student", teacherToken},
		{"teacher redeeming", http.MethodPost, "/api/v1/shop/redeem", teacherToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "forbidden", errMessage(t, rec))
		})
	}
}

func TestStudentEndpoints(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "ustoz", teacherPassword)

	var created models.CreateStudentResponse
	rec := e.do(t, http.MethodPost, "/api/v1/students", token, models.CreateStudentRequest{
		Name:    "Bobur Karimov",
		GroupID: &e.group.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unwrap(t, rec, &created)
	assert.Equal(t, "bobur_karimov", created.Login)
	assert.Len(t, created.Password, 8)

	rec = e.do(t, http.MethodGet, "/api/v1/students/"+created.Student.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail models.StudentDetailResponse
	unwrap(t, rec, &detail)
	assert.Equal(t, "Alpha", detail.GroupName)
	assert.Equal(t, "Junior", detail.Level)

	rec = e.do(t, http.MethodGet, "/api/v1/students/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid student ID format", errMessage(t, rec))

	rec = e.do(t, http.MethodGet, "/api/v1/students/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "student not found", errMessage(t, rec))

	rec = e.do(t, http.MethodPost, "/api/v1/students", token, models.CreateStudentRequest{Name: "B"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name failed on min=2", errMessage(t, rec))
}

func TestGiveCoinsEndpoint(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "ustoz", teacherPassword)

	rec := e.do(t, http.MethodPost, "/api/v1/students/"+e.student.ID+"/coins", token, models.GiveCoinsRequest{
		Amount: decimal.NewFromFloat(7.5),
		Reason: "good answer",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.GiveCoinsResponse
	unwrap(t, rec, &resp)
	assert.True(t, resp.NewBalance.Equal(decimal.NewFromFloat(7.5)))
	assert.Equal(t, e.teacher.ID, resp.Transaction.TeacherID)

	rec = e.do(t, http.MethodPost, "/api/v1/students/"+uuid.NewString()+"/coins", token, models.GiveCoinsRequest{
		Amount: decimal.NewFromInt(5),
		Reason: "ghost coins",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/students/"+e.student.ID+"/coins", token, models.GiveCoinsRequest{
		Amount: decimal.Zero,
		Reason: "nothing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount must not be zero", errMessage(t, rec))
}

func TestRedeemEndpoint(t *testing.T) {
	e := newEnv(t)
	teacherToken := e.login(t, "ustoz", teacherPassword)
	studentToken := e.login(t, "ali_valiyev", studentPassword)

	reward := models.Reward{
		ID:        uuid.NewString(),
		Name:      "Stiker",
		Price:     5,
		Category:  "kichik",
		Icon:      "gift",
		CreatedAt: time.Now().UTC(),
	}
	e.store.AddReward(reward)

	// The shop was never opened.
	rec := e.do(t, http.MethodPost, "/api/v1/shop/redeem", studentToken, models.RedeemRequest{RewardID: reward.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "shop is closed", errMessage(t, rec))

	rec = e.do(t, http.MethodPut, "/api/v1/shop/settings", teacherToken, models.UpdateShopSettingsRequest{IsOpen: true})
	require.Equal(t, http.StatusOK, rec.Code)

	// Open now, but the balance is zero.
	rec = e.do(t, http.MethodPost, "/api/v1/shop/redeem", studentToken, models.RedeemRequest{RewardID: reward.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient balance", errMessage(t, rec))

	e.store.SetBalance(e.student.ID, decimal.NewFromInt(5))
	rec = e.do(t, http.MethodPost, "/api/v1/shop/redeem", studentToken, models.RedeemRequest{RewardID: reward.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.RedeemResponse
	unwrap(t, rec, &resp)
	assert.True(t, resp.NewBalance.IsZero())
	assert.Equal(t, "Stiker", resp.Reward.Name)
}

func TestAttendanceFlowOverHTTP(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "ustoz", teacherPassword)

	rec := e.do(t, http.MethodPost, "/api/v1/attendance", token, models.SaveAttendanceRequest{
		GroupID: e.group.ID,
		Date:    "2026-03-02",
		Records: []models.AttendanceEntry{{StudentID: e.student.ID, Status: "present"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved models.SaveAttendanceResponse
	unwrap(t, rec, &saved)
	assert.Equal(t, 1, saved.Count)
	assert.Equal(t, 1, saved.Awarded)

	rec = e.do(t, http.MethodGet, "/api/v1/attendance?group_id="+e.group.ID+"&date=2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.AttendanceRecord
	unwrap(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendancePresent, records[0].Status)

	// The bonus landed on the ledger.
	rec = e.do(t, http.MethodGet, "/api/v1/rankings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.RankingEntry
	unwrap(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].TotalCoins.Equal(decimal.NewFromInt(1)))

	rec = e.do(t, http.MethodGet, "/api/v1/attendance?group_id="+e.group.ID, token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date is required", errMessage(t, rec))
}

func TestExportEndpoints(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "ustoz", teacherPassword)

	rec := e.do(t, http.MethodPost, "/api/v1/attendance", token, models.SaveAttendanceRequest{
		GroupID: e.group.ID,
		Date:    "2026-03-02",
		Records: []models.AttendanceEntry{{StudentID: e.student.ID, Status: "present"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/export/attendance.csv?group_id="+e.group.ID+"&from=2026-03-01&to=2026-03-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "2026-03-02,Ali,Keldi")

	rec = e.do(t, http.MethodGet, "/api/v1/export/transactions.xlsx", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestMessagingOverHTTP(t *testing.T) {
	e := newEnv(t)
	teacherToken := e.login(t, "ustoz", teacherPassword)
	studentToken := e.login(t, "ali_valiyev", studentPassword)

	rec := e.do(t, http.MethodPost, "/api/v1/messages", studentToken, models.SendMessageRequest{
		ToUserID: e.teacher.ID,
		Text:     "Salom!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/v1/messages", teacherToken, models.SendMessageRequest{
		ToUserID: e.student.ID,
		Text:     "Salom, Ali",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/messages/"+e.teacher.ID, studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var thread []models.Message
	unwrap(t, rec, &thread)
	require.Len(t, thread, 2)
	assert.Equal(t, "Salom!", thread[0].Text)
	assert.Equal(t, "Salom, Ali", thread[1].Text)

	// A second student cannot be messaged by the first.
	other := e.seedUser(t, "Bobur", "bobur", studentPassword, models.RoleStudent, &e.group.ID)
	rec = e.do(t, http.MethodPost, "/api/v1/messages", studentToken, models.SendMessageRequest{
		ToUserID: other.ID,
		Text:     "Yashirin xabar",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "students can only message teachers", errMessage(t, rec))
}

func TestStudentDashboardOverHTTP(t *testing.T) {
	e := newEnv(t)
	teacherToken := e.login(t, "ustoz", teacherPassword)
	studentToken := e.login(t, "ali_valiyev", studentPassword)

	rec := e.do(t, http.MethodPost, "/api/v1/students/"+e.student.ID+"/coins", teacherToken, models.GiveCoinsRequest{
		Amount: decimal.NewFromInt(35),
		Reason: "project work",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/dashboard/student", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dash models.StudentDashboardResponse
	unwrap(t, rec, &dash)
	assert.Equal(t, "Middle", dash.Level)
	assert.Equal(t, "Alpha", dash.GroupName)
	assert.Equal(t, 1, dash.GlobalRank)
	require.NotNil(t, dash.LastTransaction)
	assert.Equal(t, "project work", dash.LastTransaction.Reason)

	rec = e.do(t, http.MethodGet, "/api/v1/dashboard/teacher", teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var teacherDash models.TeacherDashboardResponse
	unwrap(t, rec, &teacherDash)
	assert.Equal(t, 1, teacherDash.TotalStudents)
	assert.True(t, teacherDash.CoinsGivenToday.Equal(decimal.NewFromInt(35)))
}
