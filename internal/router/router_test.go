package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackathon/internal/auth"
	"hackathon/internal/config"
	"hackathon/internal/handler"
	"hackathon/internal/logger"
	"hackathon/internal/metrics"
	"hackathon/internal/model"
	"hackathon/internal/repository"
	"hackathon/internal/router"
	"hackathon/internal/service"
	"hackathon/internal/testutil"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-secret"
	userPassword  = "Str0ng!Pass"
)

type envelope struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Code    string           `json:"code"`
	Data    json.RawMessage  `json:"data"`
	Errors  []map[string]any `json:"errors"`
}

type testApp struct {
	e *echo.Echo
}

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := &config.Config{
		Env:             "test",
		MaxTeams:        10,
		AdminEmail:      adminEmail,
		AdminName:       "Admin User",
		JWTSecretUser:   "user-secret",
		JWTSecretAdmin:  "admin-secret",
		JWTExpire:       time.Hour,
		FrontendURL:     "http://localhost:5173",
		RateLimitWindow: time.Minute,
		RateLimitMax:    1000,
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	gdb := testutil.NewDB(t)
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "error")
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(gdb)
	teamRepo := repository.NewTeamRepository(gdb)
	jwtService := auth.NewJWTService(cfg.JWTSecretUser, cfg.JWTSecretAdmin, cfg.JWTExpire)
	validator := service.NewValidator()
	authService := service.NewAuthService(userRepo, nil, jwtService, service.AdminIdentity{
		Email:        cfg.AdminEmail,
		Name:         cfg.AdminName,
		PasswordHash: hash,
	})
	userService := service.NewUserService(userRepo, nil)
	teamService := service.NewTeamService(teamRepo, service.NewTeamValidator(validator, teamRepo), nil, m, cfg.MaxTeams, log)

	e := echo.New()
	router.Register(e, router.Dependencies{
		Config:    cfg,
		Logger:    log,
		JWT:       jwtService,
		Users:     userService,
		Validator: validator,
		Metrics:   m,
		Gatherer:  registry,
	}, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Team:   handler.NewTeamHandler(teamService),
		User:   handler.NewUserHandler(userService, teamService),
		Status: handler.NewStatusHandler(teamService, cfg.Env),
	})
	return &testApp{e: e}
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
}

func teamBody(name string, seeds ...int) map[string]any {
	members := make([]map[string]any, 0, len(seeds))
	for _, n := range seeds {
		m := testutil.Member(n)
		members = append(members, map[string]any{
			"name":     m.Name,
			"email":    m.Email,
			"phone":    m.Phone,
			"branch":   m.Branch,
			"usn":      m.USN,
			"semester": m.Semester,
			"college":  m.College,
		})
	}
	return map[string]any{"teamName": name, "members": members}
}

type teamData struct {
	Team model.Team `json:"team"`
}

func (a *testApp) register(t *testing.T, name string, token string, seeds ...int) model.Team {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/teams", teamBody(name, seeds...), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data teamData
	decodeData(t, rec, &data)
	return data.Team
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/admin/login", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &data)
	return data.Token
}

func (a *testApp) signup(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Asha Rao",
		"email":    email,
		"password": userPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &data)
	return data.Token
}

func TestRegisterTeam_Anonymous(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/teams", teamBody("Byte Busters", 1, 2), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Team registered successfully", env.Message)

	var data handler.RegisteredTeam
	decodeData(t, rec, &data)
	assert.Equal(t, fmt.Sprintf("HAI-%d-0001", time.Now().Year()), data.Team.RegistrationNumber)
	assert.Equal(t, model.TeamStatusRegistered, data.Team.Status)
	assert.Nil(t, data.Team.RegisteredBy)
	assert.Len(t, data.Team.Members, 2)
	assert.Equal(t, model.RegistrationStats{TotalTeams: 1, MaxTeams: 10, RemainingSlots: 9, IsOpen: true}, data.RegistrationStats)
}

func TestRegisterTeam_InvalidTokenIsIgnored(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/teams", teamBody("Byte Busters", 1), "not-a-token")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data handler.RegisteredTeam
	decodeData(t, rec, &data)
	assert.Nil(t, data.Team.RegisteredBy)
}

func TestRegisterTeam_ValidationErrors(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Byte Busters", "", 1)

	tests := []struct {
		name      string
		body      map[string]any
		message   string
		wantField string
	}{
		{
			name:      "duplicate email inside the team",
			body:      teamBody("Null Pointers", 2, 2),
			message:   "All members must have unique email addresses",
			wantField: "members[1].email",
		},
		{
			name:      "team name taken ignoring case",
			body:      teamBody("byte busters", 3),
			message:   "A team with this name already exists",
			wantField: "teamName",
		},
		{
			name:      "member already on another team",
			body:      teamBody("Null Pointers", 1),
			message:   "The following email(s) are already registered: member1@example.com. The following USN(s) are already registered: 1AB21CS001",
			wantField: "members[0].email",
		},
		{
			name:      "too many members",
			body:      teamBody("Null Pointers", 3, 4, 5, 6, 7),
			message:   service.ValidationFailedMessage,
			wantField: "members",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/api/teams", tt.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			env := decode(t, rec)
			assert.Equal(t, "fail", env.Status)
			assert.Equal(t, tt.message, env.Message)
			var fields []string
			for _, e := range env.Errors {
				fields = append(fields, e["field"].(string))
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestRegisterTeam_CapacityReached(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.MaxTeams = 1 })
	app.register(t, "Byte Busters", "", 1)

	rec := app.do(t, http.MethodPost, "/api/teams", teamBody("Null Pointers", 2), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "REGISTRATION_CLOSED", env.Code)
	assert.Equal(t, "Registration is closed. Maximum number of teams reached.", env.Message)

	rec = app.do(t, http.MethodGet, "/api/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report model.StatusReport
	decodeData(t, rec, &report)
	assert.False(t, report.Registration.IsOpen)
	assert.EqualValues(t, 0, report.Registration.RemainingSlots)
}

func TestAdminTeamManagement(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	team := app.register(t, "Byte Busters", "", 1, 2)
	app.register(t, "Null Pointers", "", 3)
	path := "/api/teams/" + team.ID.String()

	rec := app.do(t, http.MethodPut, path+"/status", map[string]string{"status": "cancelled"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var got teamData
	decodeData(t, rec, &got)
	assert.Equal(t, model.TeamStatusCancelled, got.Team.Status)

	rec = app.do(t, http.MethodPut, path+"/status", map[string]string{"status": "archived"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/teams?status=cancelled&limit=5", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list service.TeamList
	decodeData(t, rec, &list)
	require.Len(t, list.Teams, 1)
	assert.Equal(t, "Byte Busters", list.Teams[0].TeamName)
	assert.EqualValues(t, 1, list.Pagination.TotalCount)
	assert.EqualValues(t, 2, list.Stats.TotalTeams)

	rec = app.do(t, http.MethodGet, "/api/teams?limit=500", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPut, path, map[string]any{"teamName": "Byte Blasters"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &got)
	assert.Equal(t, "Byte Blasters", got.Team.TeamName)
	assert.Len(t, got.Team.Members, 2)

	rec = app.do(t, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Team deleted successfully", decode(t, rec).Message)

	rec = app.do(t, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Team not found", decode(t, rec).Message)

	rec = app.do(t, http.MethodGet, "/api/teams/not-a-uuid", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)
	team := app.register(t, "Byte Busters", "", 1, 2)

	rec := app.do(t, http.MethodGet, "/api/teams/export", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), service.CSVFilename)

	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"Registration Number","Team Name","Status"`))
	assert.True(t, strings.HasPrefix(lines[1], fmt.Sprintf(`"%s","Byte Busters","registered"`, team.RegistrationNumber)))
}

func TestRoleSegregation(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)
	userToken := app.signup(t, "asha@example.com")

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		code    int
		message string
	}{
		{"no token on admin route", http.MethodGet, "/api/teams", "", http.StatusUnauthorized, "Access denied. No token provided."},
		{"garbage token on admin route", http.MethodGet, "/api/teams", "garbage", http.StatusUnauthorized, "Invalid admin token."},
		{"participant token on admin route", http.MethodGet, "/api/teams", userToken, http.StatusForbidden, "Access denied. Admin privileges required."},
		{"admin token on participant route", http.MethodGet, "/api/user/profile", adminToken, http.StatusForbidden, "Access denied. Participant token required."},
		{"no token on participant route", http.MethodGet, "/api/user/team", "", http.StatusUnauthorized, "Access denied. No token provided."},
		{"admin token on admin route", http.MethodGet, "/api/teams", adminToken, http.StatusOK, ""},
		{"participant token on participant route", http.MethodGet, "/api/user/profile", userToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, nil, tt.token)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, decode(t, rec).Message)
			}
		})
	}
}

func TestParticipantOwnTeam(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)
	userToken := app.signup(t, "asha@example.com")

	rec := app.do(t, http.MethodGet, "/api/user/team", nil, userToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	team := app.register(t, "Byte Busters", userToken, 1)
	require.NotNil(t, team.RegisteredBy)

	rec = app.do(t, http.MethodGet, "/api/user/team", nil, userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var got teamData
	decodeData(t, rec, &got)
	assert.Equal(t, team.ID, got.Team.ID)

	rec = app.do(t, http.MethodPut, "/api/user/team", map[string]any{
		"projectIdea": "Offline-first attendance tracker",
		"status":      "confirmed",
	}, userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &got)
	require.NotNil(t, got.Team.ProjectIdea)
	assert.Equal(t, "Offline-first attendance tracker", *got.Team.ProjectIdea)
	assert.Equal(t, model.TeamStatusRegistered, got.Team.Status)

	rec = app.do(t, http.MethodPut, "/api/teams/"+team.ID.String()+"/status", map[string]string{"status": "confirmed"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/user/team", map[string]any{"teamName": "Byte Blasters"}, userToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Team cannot be edited in its current status", decode(t, rec).Message)
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "asha@example.com")
	app.signup(t, "ravi@example.com")

	rec := app.do(t, http.MethodPut, "/api/user/profile", map[string]string{"email": "RAVI@example.com"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is already taken", decode(t, rec).Message)

	rec = app.do(t, http.MethodPut, "/api/user/profile", map[string]string{"name": "Asha Kumar"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/user/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var data handler.ProfileData
	decodeData(t, rec, &data)
	assert.Equal(t, "Asha Kumar", data.User.Name)
	assert.Equal(t, "asha@example.com", data.User.Email)
}

func TestSignup_WeakPassword(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Asha Rao",
		"email":    "asha@example.com",
		"password": "password",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "password", env.Errors[0]["field"])
}

func TestHealthAndUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "Server is running", health.Message)
	assert.Equal(t, "test", health.Environment)

	rec = app.do(t, http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route /api/nope not found", decode(t, rec).Message)
}

func TestRateLimit(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.RateLimitMax = 2 })

	for i := 0; i < 2; i++ {
		rec := app.do(t, http.MethodGet, "/api/health", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := app.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "RATE_LIMITED", env.Code)
	assert.Equal(t, "Too many requests from this IP, please try again later.", env.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Byte Busters", "", 1)

	rec := app.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hackathon_team_registrations_total 1")
	assert.Contains(t, rec.Body.String(), `hackathon_api_http_requests_total{method="POST",route="/api/teams",status="201"} 1`)
}
