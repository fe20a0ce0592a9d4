package ginserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/dto"
	reportsapp "healthtrack/internal/app/handlers/reports"
	"healthtrack/internal/app/middleware"
	"healthtrack/internal/app/queries"
	authsvc "healthtrack/internal/app/services/auth"
	"healthtrack/internal/infra/obs"
	"healthtrack/internal/infra/security"
	"healthtrack/internal/infra/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	reports *memory.ReportRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := memory.NewReportRepository()
	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	reportsapp.Register(cmdBus, queryBus, reportsapp.Dependencies{Reports: repo})

	cmds := middleware.ChainCommands(cmdBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(memory.NewIdempotencyStore(0), middleware.IdempotencyOptions{}),
	)
	auth := &authsvc.Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
	router := NewRouter(obs.Middleware{Logger: obs.NewLogger("test", io.Discard)}, obs.HealthHandlers{}, Handlers{
		Reports:        ReportHandler{Commands: cmds, Queries: queryBus},
		Web:            WebHandler{Commands: cmds, Queries: queryBus, Auth: auth},
		Auth:           AuthHandler{Service: auth},
		AuthMiddleware: AuthMiddleware{Service: auth}.Handle,
	})
	return &testServer{router: router, reports: repo}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) form(t *testing.T, path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

const validJSON = `{"hb":"14","sugar":"95","bp_sys":"120","bp_dia":"80","chol":"180","height":"170","weight":"65"}`

func validForm(token string) url.Values {
	return url.Values{
		"hb": {"14"}, "sugar": {"130"}, "bp_sys": {"120"}, "bp_dia": {"80"},
		"chol": {"180"}, "height": {"170"}, "weight": {"65"}, "form_token": {token},
	}
}

func register(t *testing.T, s *testServer, email string) string {
	t.Helper()
	body := `{"email":"` + email + `","name":"Tester","password":"password123"}`
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func listReports(t *testing.T, s *testServer, token string) dto.ReportCollection {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/v1/reports", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ReportCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func TestEvaluateDoesNotPersist(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/evaluations", validJSON, "")
	require.Equal(t, http.StatusOK, w.Code)

	var ev dto.Evaluation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	require.NotNil(t, ev.Overall)
	assert.Equal(t, "Stable / Normal", ev.Overall.Status)
	assert.Empty(t, listReports(t, s, "").Items)
}

func TestSubmitStoresOnlyCompleteInput(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/reports", `{"hb":"14","sugar":"x"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var partial reportsapp.SubmitMetricsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &partial))
	assert.False(t, partial.Saved)
	assert.Equal(t, "Data Issue", partial.Evaluation.Overall.Status)

	w = s.do(t, http.MethodPost, "/api/v1/reports", validJSON, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/reports/1", w.Header().Get("Location"))

	list := listReports(t, s, "")
	require.Len(t, list.Items, 1)
	assert.Equal(t, []float64{95}, list.Chart.FastingSugar)
}

func TestSubmitIsIdempotentPerKey(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(validJSON))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "retry-1")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	assert.Len(t, listReports(t, s, "").Items, 1)
}

func TestOwnerScoping(t *testing.T) {
	s := newTestServer(t)
	alice := register(t, s, "alice@example.com")
	bob := register(t, s, "bob@example.com")

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/reports", validJSON, alice).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/reports", validJSON, bob).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/reports", validJSON, "").Code)

	assert.Len(t, listReports(t, s, alice).Items, 1)
	assert.Len(t, listReports(t, s, "").Items, 3)

	aliceReport := listReports(t, s, alice).Items[0].ID
	w := s.do(t, http.MethodDelete, "/api/v1/reports/"+itoa(aliceReport), "", bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/reports/"+itoa(aliceReport), "", alice)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/reports", "", bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":1}`, w.Body.String())
	assert.Len(t, listReports(t, s, "").Items, 1)

	w = s.do(t, http.MethodDelete, "/api/v1/reports/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/reports", validJSON, "").Code)

	w := s.do(t, http.MethodGet, "/api/v1/reports/export.csv", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=health_reports.csv", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "ID,Created At,Hemoglobin,Fasting Sugar,BP Systolic,BP Diastolic,Cholesterol,Height (cm),Weight (kg),BMI\n"))

	w = s.do(t, http.MethodGet, "/export_csv", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestArchiveUnavailableWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/reports/export/archive", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthAPI(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/auth/me", "", "").Code)

	token := register(t, s, "carol@example.com")
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"CAROL@example.com","name":"C","password":"password123"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "carol@example.com", me.User.Email)
	assert.True(t, me.Session.ExpiresAt.After(time.Now()))
	assert.Empty(t, me.Session.Token)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"carol@example.com","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/api/v1/auth/logout", "", token).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/auth/me", "", token).Code)
}

func TestWebAnalyzeAndHistory(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Health Report Analyzer")
	assert.Contains(t, w.Body.String(), "Guest mode")

	w = s.form(t, "/", validForm("tok-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mild Concern")
	assert.Contains(t, w.Body.String(), "Report saved")

	// browser resubmit of the same form
	s.form(t, "/", validForm("tok-1"), nil)
	w = s.do(t, http.MethodGet, "/history", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/delete/1")
	assert.NotContains(t, w.Body.String(), "/delete/2")

	w = s.do(t, http.MethodGet, "/delete/1", "", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/history", w.Header().Get("Location"))
	w = s.do(t, http.MethodGet, "/delete/1", "", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/delete/zero", "", "").Code)

	s.form(t, "/", validForm("tok-2"), nil)
	w = s.do(t, http.MethodGet, "/clear_history", "", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, listReports(t, s, "").Items)
}

func TestWebRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)

	w := s.form(t, "/register", url.Values{"name": {""}, "email": {"a@b.c"}, "password": {"password123"}}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "All fields are required.")

	w = s.form(t, "/register", url.Values{"name": {"Dana"}, "email": {"dana@example.com"}, "password": {"password123"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	cookie := sessionCookie(t, w)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "Signed in as Dana")

	w = s.form(t, "/", validForm("dana-1"), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	all, err := s.reports.List(req.Context(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Owner.IsGuest())

	w = s.form(t, "/login", url.Values{"email": {"dana@example.com"}, "password": {"wrong-pass"}}, nil)
	assert.Contains(t, w.Body.String(), "Invalid email or password.")
	w = s.form(t, "/login", url.Values{"email": {"DANA@example.com"}, "password": {"password123"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/auth/me", "", cookie.Value).Code)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatalf("no %s cookie set", SessionCookieName)
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
