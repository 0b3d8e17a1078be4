package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/course"
)

type courseApi struct {
	svc      course.ServiceInterface
	gate     *auth.Gate
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := courseApi{
		svc:      opts.CourseSvc,
		gate:     opts.Gate,
		validate: opts.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, authorize(opts.Gate, auth.ResourceCourses, auth.ActionCreate))
	cg.GET("", api.query, authorize(opts.Gate, auth.ResourceCourses, auth.ActionRead))
	cg.GET("/:id", api.retrieve, authorize(opts.Gate, auth.ResourceCourses, auth.ActionRead))
	cg.PUT("/:id", api.update, authorize(opts.Gate, auth.ResourceCourses, auth.ActionUpdate))
	cg.DELETE("/:id", api.destroy, authorize(opts.Gate, auth.ResourceCourses, auth.ActionDelete))

	qg := g.Group("/quizzes", jwt)
	qg.POST("", api.createQuiz, authorize(opts.Gate, auth.ResourceQuizzes, auth.ActionCreate))
	qg.GET("", api.queryQuizzes, authorize(opts.Gate, auth.ResourceQuizzes, auth.ActionRead))
	qg.GET("/:id", api.retrieveQuiz, authorize(opts.Gate, auth.ResourceQuizzes, auth.ActionRead))
	qg.PUT("/:id", api.updateQuiz, authorize(opts.Gate, auth.ResourceQuizzes, auth.ActionUpdate))
	qg.DELETE("/:id", api.destroyQuiz, authorize(opts.Gate, auth.ResourceQuizzes, auth.ActionDelete))
}

func courseScope(ctx echo.Context, authCtx *auth.Context, resource auth.Resource) (auth.Filter, error) {
	return authCtx.Scope(ctx.Request().Context(), resource, auth.Query{
		SchoolID:  ctx.QueryParam("school_id"),
		ClassName: ctx.QueryParam("class_name"),
		Subject:   ctx.QueryParam("subject"),
	})
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := courseScope(ctx, authCtx, auth.ResourceCourses)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), scope, authCtx.Identity.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := courseScope(ctx, authCtx, auth.ResourceCourses)
	if err != nil {
		return err
	}

	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()

	courses, err := api.svc.Query(ctx.Request().Context(), filter, scope)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

// getScopedCourse hides courses outside the caller's tenant.
func (api *courseApi) getScopedCourse(ctx echo.Context, authCtx *auth.Context) (course.Course, error) {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return course.Course{}, errHttpNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	ident := authCtx.Identity
	if ident.Role != auth.RoleSuperAdmin && crs.SchoolID != ident.SchoolID {
		return course.Course{}, errHttpNotFound
	}
	return crs, nil
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	crs, err := api.getScopedCourse(ctx, authCtx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := courseScope(ctx, authCtx, auth.ResourceCourses)
	if err != nil {
		return err
	}
	crs, err := api.getScopedCourse(ctx, authCtx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(crs, api.validate); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), scope, crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	crs, err := api.getScopedCourse(ctx, authCtx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) createQuiz(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := courseScope(ctx, authCtx, auth.ResourceQuizzes)
	if err != nil {
		return err
	}

	var data course.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	quiz, err := api.svc.CreateQuiz(ctx.Request().Context(), scope, authCtx.Identity.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, quiz)
}

func (api *courseApi) queryQuizzes(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := courseScope(ctx, authCtx, auth.ResourceQuizzes)
	if err != nil {
		return err
	}

	quizzes, err := api.svc.QueryQuizzes(ctx.Request().Context(), scope)
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []course.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

// getScopedQuiz hides quizzes outside the caller's tenant.
func (api *courseApi) getScopedQuiz(ctx echo.Context, authCtx *auth.Context) (course.Quiz, error) {
	quiz, err := api.svc.GetQuiz(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrQuizNotFound {
			return course.Quiz{}, errHttpNotFound
		}
		return course.Quiz{}, errors.Wrap(err, "finding quiz by ID")
	}
	ident := authCtx.Identity
	if ident.Role != auth.RoleSuperAdmin && quiz.SchoolID != ident.SchoolID {
		return course.Quiz{}, errHttpNotFound
	}
	return quiz, nil
}

func (api *courseApi) retrieveQuiz(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	quiz, err := api.getScopedQuiz(ctx, authCtx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, quiz)
}

func (api *courseApi) updateQuiz(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := courseScope(ctx, authCtx, auth.ResourceQuizzes)
	if err != nil {
		return err
	}
	quiz, err := api.getScopedQuiz(ctx, authCtx)
	if err != nil {
		return err
	}

	var data course.UpdateQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuiz")
	}
	if err := data.Validate(quiz, api.validate); err != nil {
		return err
	}

	quiz, err = api.svc.UpdateQuiz(ctx.Request().Context(), scope, quiz.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating quiz")
	}
	return ctx.JSON(http.StatusOK, quiz)
}

func (api *courseApi) destroyQuiz(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	quiz, err := api.getScopedQuiz(ctx, authCtx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteQuizzes(ctx.Request().Context(), quiz.ID); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}
