package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/notif"
	"github.com/elearn360/backend/core/project"
	"github.com/elearn360/backend/core/user"
)

type (
	// ProjectReporter renders a project detail view as a downloadable PDF.
	// Implemented by services/report.
	ProjectReporter interface {
		ProjectReport(det project.Detail) ([]byte, error)
	}

	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    user.Service
		CatalogSvc catalog.Service
		ProjectSvc project.Service
		NotifSvc   notif.Service
		Reporter   ProjectReporter
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps ServerDeps
		app  *echo.Echo

		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	initJWTConfig(deps.Conf)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(requestMetricsMiddleware())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate, s.deps.Translator)
	registerCatalogAPI(v1, jwt, s.deps.CatalogSvc, s.deps.Validate)
	registerProjectAPI(v1, jwt, s.deps.ProjectSvc, s.deps.Reporter, s.deps.Validate)
	registerTaskAPI(v1, jwt, s.deps.ProjectSvc, s.deps.Validate)
	registerDeliverableAPI(v1, jwt, s.deps.ProjectSvc, s.deps.Validate)
	registerNotificationAPI(v1, jwt, s.deps.NotifSvc)
	registerDashboardAPI(v1, jwt, s.deps.ProjectSvc, s.deps.UserSvc, s.deps.CatalogSvc, s.deps.NotifSvc)

	// uploaded deliverable files; names are UUID-prefixed and unguessable
	v1.Static("/uploads", conf.UploadsDir)
}

func (s *Server) Start() {
	s.errs <- s.app.Start(s.deps.Conf.Server.Addr())
}

// Errors reports fatal server errors; reading one means the server is down.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// ShutdownSignal delivers SIGINT/SIGTERM and programmatic shutdown requests.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown requests a graceful shutdown. Used by the error handler on
// integrity errors.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to eLearn360 API!")
}
