package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lucahenggart/sportbox-backend/internal/handlers"
	"github.com/lucahenggart/sportbox-backend/internal/middleware"
	"github.com/lucahenggart/sportbox-backend/internal/models"
	"github.com/lucahenggart/sportbox-backend/internal/routes"
	"github.com/lucahenggart/sportbox-backend/internal/services"
	"github.com/lucahenggart/sportbox-backend/internal/storage"
)

const adminPassword = "admin-secret"

type testEnv struct {
	router      http.Handler
	users       *storage.UserStore
	auth        *services.AuthService
	defectsPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	log := zerolog.Nop()

	users := storage.NewUserStore(filepath.Join(dir, "users.json"), adminPassword, log)
	box := storage.NewConfigStore(filepath.Join(dir, "config.json"), log)
	defectsPath := filepath.Join(dir, "defekte_verluste.csv")
	reports := storage.NewReportLog(defectsPath, filepath.Join(dir, "materialwuensche.csv"), log)

	auth := services.NewAuthService(users, log)
	sessions := services.NewSessionManager()
	h := handlers.New(auth, sessions, users, box, reports, log)

	r := chi.NewRouter()
	r.Use(middleware.SessionLoader(sessions))
	routes.SetupRoutes(r, h)

	return &testEnv{router: r, users: users, auth: auth, defectsPath: defectsPath}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login authenticates over the API and returns the session cookie.
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("login response carried no session cookie")
	return nil
}

func (e *testEnv) approve(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, e.users.Update(func(table *models.UserTable) error {
		u := table.Users[username]
		u.Approved = true
		table.Users[username] = u
		return nil
	}))
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) handlers.MessageResponse {
	t.Helper()
	var resp handlers.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLogin_SetsSessionAndState(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.auth.Register("alice", "pw", "Alice A", ""))

	rec := env.do(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "alice", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, string(services.StatePendingApproval), resp.State)
	require.NotNil(t, resp.User)
	require.Equal(t, "alice", resp.User.Username)
	require.False(t, resp.User.Approved)

	require.NotEmpty(t, rec.Result().Cookies())
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.auth.Register("alice", "pw", "Alice A", ""))
	require.NoError(t, env.users.Update(func(table *models.UserTable) error {
		u := table.Users["alice"]
		u.IsActive = models.BoolPtr(false)
		table.Users["alice"] = u
		return nil
	}))

	unknown := env.do(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "nobody", Password: "pw"})
	badPassword := env.do(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "admin", Password: "wrong"})
	deactivated := env.do(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "alice", Password: "pw"})

	for _, rec := range []*httptest.ResponseRecorder{unknown, badPassword, deactivated} {
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	require.Equal(t, unknown.Body.String(), badPassword.Body.String())
	require.Equal(t, unknown.Body.String(), deactivated.Body.String())
}

func TestRegister_Gates(t *testing.T) {
	env := newTestEnv(t)

	base := handlers.RegisterRequest{
		Username:        "alice",
		Password:        "pw",
		PasswordConfirm: "pw",
		FullName:        "Alice A",
		AcceptedRules:   true,
	}

	noRules := base
	noRules.AcceptedRules = false
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/auth/register", noRules).Code)

	mismatch := base
	mismatch.PasswordConfirm = "other"
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/auth/register", mismatch).Code)

	empty := base
	empty.Username = ""
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/auth/register", empty).Code)

	rec := env.do(t, http.MethodPost, "/api/auth/register", base)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Empty(t, rec.Result().Cookies(), "registration must not authenticate")

	dup := env.do(t, http.MethodPost, "/api/auth/register", base)
	require.Equal(t, http.StatusConflict, dup.Code)
	require.Contains(t, decodeMessage(t, dup).Message, "taken")
}

func TestCode_GatedByState(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.auth.Register("alice", "pw", "Alice A", ""))

	// Anonymous
	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/code", nil).Code)

	// Pending approval
	pending := env.login(t, "alice", "pw")
	require.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/code", nil, pending).Code)

	// Approved
	env.approve(t, "alice")
	approved := env.login(t, "alice", "pw")
	rec := env.do(t, http.MethodGet, "/api/code", nil, approved)
	require.Equal(t, http.StatusOK, rec.Code)
	var code handlers.CodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &code))
	require.Equal(t, storage.DefaultCode, code.CurrentCode)

	// Admin
	admin := env.login(t, "admin", adminPassword)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/code", nil, admin).Code)
}

func TestAdminSetCode(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", adminPassword)

	rec := env.do(t, http.MethodPut, "/api/admin/code", handlers.SetCodeRequest{CurrentCode: "  1234 "}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	got := env.do(t, http.MethodGet, "/api/code", nil, admin)
	var code handlers.CodeResponse
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &code))
	require.Equal(t, "1234", code.CurrentCode)
}

func TestSubmitDefect_CountBoundary(t *testing.T) {
	env := newTestEnv(t)

	report := handlers.DefectRequest{
		Datum:    "2026-09-01",
		Art:      models.ReportTypeDefect,
		Material: "Tennisball",
		Anzahl:   0,
	}
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/reports/defects", report).Code)

	report.Anzahl = 1
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/reports/defects", report).Code)
}

func TestSubmitDefect_RejectsUnknownMaterial(t *testing.T) {
	env := newTestEnv(t)

	report := handlers.DefectRequest{
		Datum:    "2026-09-01",
		Art:      models.ReportTypeDefect,
		Material: "Curlingstein",
		Anzahl:   1,
	}
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/reports/defects", report).Code)
}

func TestDefectRoundTrip_ActingUser(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.auth.Register("alice", "pw", "Alice A", ""))
	alice := env.login(t, "alice", "pw")

	report := handlers.DefectRequest{
		Name:         "Alice",
		Datum:        "2026-09-01",
		Art:          models.ReportTypeLoss,
		Material:     "Beachvolleyball",
		Anzahl:       1,
		Beschreibung: "über den Zaun",
	}

	// Authenticated submission carries the acting username.
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/reports/defects", report, alice).Code)
	// Anonymous submission does not.
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/reports/defects", report).Code)

	admin := env.login(t, "admin", adminPassword)
	rec := env.do(t, http.MethodGet, "/api/admin/reports/defects", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var list handlers.DefectListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.True(t, list.Success)
	require.Len(t, list.Defects, 2)

	first := list.Defects[0]
	require.Equal(t, "alice", first.User)
	require.Equal(t, report.Material, first.Material)
	require.Equal(t, report.Anzahl, first.Anzahl)
	require.NotEmpty(t, first.Timestamp)

	require.Empty(t, list.Defects[1].User)
}

func TestWishRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	wish := handlers.WishRequest{Name: "Bob", Klasse: "5b", Wunsch: "Frisbee", Begruendung: "für die Wiese"}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/reports/wishes", wish).Code)

	admin := env.login(t, "admin", adminPassword)
	rec := env.do(t, http.MethodGet, "/api/admin/reports/wishes", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var list handlers.WishListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Wishes, 1)
	require.Equal(t, "Frisbee", list.Wishes[0].Wunsch)
	require.Empty(t, list.Wishes[0].User)
}

func TestAdminEndpoints_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.auth.Register("alice", "pw", "Alice A", ""))
	env.approve(t, "alice")
	alice := env.login(t, "alice", "pw")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPut, "/api/admin/users/approval"},
		{http.MethodPut, "/api/admin/users/active"},
		{http.MethodPut, "/api/admin/code"},
		{http.MethodGet, "/api/admin/reports/defects"},
		{http.MethodGet, "/api/admin/reports/wishes"},
	}
	for _, p := range paths {
		require.Equal(t, http.StatusUnauthorized, env.do(t, p.method, p.path, nil).Code, "%s %s anonymous", p.method, p.path)
		require.Equal(t, http.StatusForbidden, env.do(t, p.method, p.path, nil, alice).Code, "%s %s as member", p.method, p.path)
	}
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.auth.Register("alice", "pw", "Alice A", ""))
	admin := env.login(t, "admin", adminPassword)

	// Listing shows alice but never the admin record.
	rec := env.do(t, http.MethodGet, "/api/admin/users", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var list handlers.UserListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	require.Equal(t, "alice", list.Users[0].Username)
	require.False(t, list.Users[0].Approved)

	// Approve, then the next login is in the approved state.
	rec = env.do(t, http.MethodPut, "/api/admin/users/approval",
		handlers.SetApprovalRequest{Username: "alice", Approved: true}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	login := env.do(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "alice", Password: "pw"})
	var resp handlers.AuthResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &resp))
	require.Equal(t, string(services.StateApproved), resp.State)

	// Deactivate, and alice cannot authenticate at all.
	rec = env.do(t, http.MethodPut, "/api/admin/users/active",
		handlers.SetActiveRequest{Username: "alice", Active: false}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusUnauthorized,
		env.do(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "alice", Password: "pw"}).Code)

	// Unknown and admin targets are rejected.
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/admin/users/approval",
		handlers.SetApprovalRequest{Username: "nobody", Approved: true}, admin).Code)
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/admin/users/approval",
		handlers.SetApprovalRequest{Username: "admin", Approved: false}, admin).Code)
}

func TestLogout_ResetsSession(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", adminPassword)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/logout", nil, admin).Code)

	// The old token is gone, not just the cookie.
	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/code", nil, admin).Code)

	me := env.do(t, http.MethodGet, "/api/auth/me", nil, admin)
	var resp handlers.AuthResponse
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &resp))
	require.Equal(t, string(services.StateAnonymous), resp.State)
	require.Nil(t, resp.User)
}

func TestCorruptDefectLog_DegradesInsteadOfFailing(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.defectsPath, []byte("\"broken\n"), 0o644))

	admin := env.login(t, "admin", adminPassword)
	rec := env.do(t, http.MethodGet, "/api/admin/reports/defects", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var list handlers.DefectListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.False(t, list.Success)
	require.Empty(t, list.Defects)
	require.NotEmpty(t, list.Message)
}

func TestMaterialCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool     `json:"success"`
		Materials []string `json:"materials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, models.MaterialCatalog, resp.Materials)
	require.Equal(t, "Anderes", resp.Materials[len(resp.Materials)-1])
}
