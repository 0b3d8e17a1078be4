package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/ai"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
	"github.com/sharath2004/edubridge/core/course"
	"github.com/sharath2004/edubridge/core/school"
	"github.com/sharath2004/edubridge/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		Gate         *auth.Gate
		UserSvc      user.ServiceInterface
		SchoolSvc    school.ServiceInterface
		ClassSvc     class.ServiceInterface
		AcademicSvc  academic.ServiceInterface
		CourseSvc    course.ServiceInterface
		AssistantSvc ai.ServiceInterface
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options, shutdown chan os.Signal) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts)
	registerSchoolAPI(v1, jwt, s.opts)
	registerClassAPI(v1, jwt, s.opts)
	registerAcademicAPI(v1, jwt, s.opts)
	registerCourseAPI(v1, jwt, s.opts)
	registerAssistantAPI(v1, jwt, s.opts)
}

// signalShutdown lets the error handler trigger a graceful shutdown on
// unrecoverable errors.
func (s *server) signalShutdown() {
	if s.shutdown != nil {
		s.shutdown <- syscall.SIGTERM
	}
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to EduBridge API!")
}
