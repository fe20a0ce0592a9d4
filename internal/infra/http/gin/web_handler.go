package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/dto"
	reportsapp "healthtrack/internal/app/handlers/reports"
	"healthtrack/internal/app/queries"
	authsvc "healthtrack/internal/app/services/auth"
	"healthtrack/internal/domain/metrics"
	domainreports "healthtrack/internal/domain/reports"
	domainuser "healthtrack/internal/domain/user"
)

type WebHTTP interface {
	Index(c *gin.Context)
	Analyze(c *gin.Context)
	History(c *gin.Context)
	ExportCSV(c *gin.Context)
	ClearHistory(c *gin.Context)
	DeleteReport(c *gin.Context)
	RegisterForm(c *gin.Context)
	Register(c *gin.Context)
	LoginForm(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

// WebHandler renders the browser pages. Mutating GET routes redirect back to
// the history page.
type WebHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Auth     *authsvc.Service
	Cookie   SessionCookie
	Logger   *slog.Logger
}

type pageData struct {
	Title      string
	SignedIn   bool
	UserName   string
	Error      string
	Name       string
	Email      string
	FormToken  string
	Input      metrics.Input
	Evaluation *dto.Evaluation
	Saved      bool
	Reports    dto.ReportCollection
}

func newPage(c *gin.Context, title string) pageData {
	p, ok := currentPrincipal(c)
	return pageData{Title: title, SignedIn: ok, UserName: p.Name}
}

func (h WebHandler) Index(c *gin.Context) {
	page := newPage(c, "Analyzer")
	page.FormToken = uuid.NewString()
	c.HTML(http.StatusOK, "index.html", page)
}

// Analyze evaluates the form and stores it when every value is valid. The
// form token doubles as the idempotency key, so a browser resubmit of the
// same form stores nothing new.
func (h WebHandler) Analyze(c *gin.Context) {
	var in metrics.Input
	if err := c.ShouldBind(&in); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	cmd := reportsapp.SubmitMetricsCommand{
		Owner:      ownerOf(c),
		Input:      in,
		RequestKey: c.PostForm("form_token"),
	}
	result, err := commands.Dispatch[reportsapp.SubmitMetricsCommand, *reportsapp.SubmitMetricsResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	page := newPage(c, "Analyzer")
	page.FormToken = uuid.NewString()
	page.Input = in
	page.Evaluation = &result.Evaluation
	page.Saved = result.Saved
	c.HTML(http.StatusOK, "index.html", page)
}

func (h WebHandler) History(c *gin.Context) {
	list, err := queries.Ask[reportsapp.ListReportsQuery, dto.ReportCollection](c.Request.Context(), h.Queries, reportsapp.ListReportsQuery{Owner: ownerOf(c)})
	if err != nil {
		h.fail(c, err)
		return
	}
	page := newPage(c, "History")
	page.Reports = list
	c.HTML(http.StatusOK, "history.html", page)
}

func (h WebHandler) ExportCSV(c *gin.Context) {
	file, err := queries.Ask[reportsapp.ExportReportsQuery, reportsapp.ExportFile](c.Request.Context(), h.Queries, reportsapp.ExportReportsQuery{Owner: ownerOf(c)})
	if err != nil {
		h.fail(c, err)
		return
	}
	writeExport(c, file)
}

func (h WebHandler) ClearHistory(c *gin.Context) {
	if _, err := commands.Dispatch[reportsapp.ClearReportsCommand, *reportsapp.ClearReportsResult](c.Request.Context(), h.Commands, reportsapp.ClearReportsCommand{Owner: ownerOf(c)}); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/history")
}

// DeleteReport removes one report in scope. Deleting a report that does not
// exist, or belongs to someone else, is silently ignored.
func (h WebHandler) DeleteReport(c *gin.Context) {
	id, err := domainreports.ParseID(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	cmd := reportsapp.DeleteReportCommand{ID: id, Owner: ownerOf(c)}
	_, err = commands.Dispatch[reportsapp.DeleteReportCommand, *reportsapp.DeleteReportResult](c.Request.Context(), h.Commands, cmd)
	if err != nil && !errors.Is(err, domainreports.ErrNotFound) {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/history")
}

func (h WebHandler) RegisterForm(c *gin.Context) {
	if _, ok := currentPrincipal(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", newPage(c, "Register"))
}

func (h WebHandler) Register(c *gin.Context) {
	if _, ok := currentPrincipal(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	page := newPage(c, "Register")
	page.Name = c.PostForm("name")
	page.Email = c.PostForm("email")
	if h.Auth == nil {
		h.fail(c, errors.New("auth service unavailable"))
		return
	}
	result, err := h.Auth.Register(c.Request.Context(), authsvc.RegisterParams{
		Name:     page.Name,
		Email:    page.Email,
		Password: c.PostForm("password"),
	})
	if err != nil {
		page.Error = registerMessage(err)
		if page.Error == "" {
			h.fail(c, err)
			return
		}
		c.HTML(http.StatusOK, "register.html", page)
		return
	}
	h.Cookie.set(c, result.Token, result.Expires)
	c.Redirect(http.StatusFound, "/")
}

func registerMessage(err error) string {
	switch {
	case errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrNameRequired):
		return "All fields are required."
	case errors.Is(err, domainuser.ErrEmailInvalid):
		return "Please enter a valid email address."
	case errors.Is(err, authsvc.ErrPasswordTooShort):
		return "Password must be at least 8 characters."
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		return "Email is already registered. Please login."
	default:
		return ""
	}
}

func (h WebHandler) LoginForm(c *gin.Context) {
	if _, ok := currentPrincipal(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", newPage(c, "Login"))
}

func (h WebHandler) Login(c *gin.Context) {
	if _, ok := currentPrincipal(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if h.Auth == nil {
		h.fail(c, errors.New("auth service unavailable"))
		return
	}
	page := newPage(c, "Login")
	page.Email = c.PostForm("email")
	result, err := h.Auth.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    page.Email,
		Password: c.PostForm("password"),
	})
	if errors.Is(err, authsvc.ErrInvalidCredentials) {
		page.Error = "Invalid email or password."
		c.HTML(http.StatusOK, "login.html", page)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookie.set(c, result.Token, result.Expires)
	c.Redirect(http.StatusFound, "/")
}

func (h WebHandler) Logout(c *gin.Context) {
	if h.Auth != nil {
		if err := h.Auth.Logout(c.Request.Context(), requestToken(c)); err != nil && h.Logger != nil {
			h.Logger.Warn("logout failed", "error", err)
		}
	}
	h.Cookie.clear(c)
	c.Redirect(http.StatusFound, "/")
}

func (h WebHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if h.Logger != nil {
		h.Logger.Error("page request failed", "path", c.FullPath(), "error", err)
	}
	c.String(statusFor(err), http.StatusText(statusFor(err)))
}

var _ WebHTTP = WebHandler{}
