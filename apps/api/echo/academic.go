package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/auth"
)

type academicApi struct {
	svc      academic.ServiceInterface
	gate     *auth.Gate
	validate *validator.Validate
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := academicApi{
		svc:      opts.AcademicSvc,
		gate:     opts.Gate,
		validate: opts.Validate,
	}

	mg := g.Group("/marks", jwt)
	mg.POST("", api.createMark, authorize(opts.Gate, auth.ResourceMarks, auth.ActionCreate))
	mg.GET("", api.queryMarks, authorize(opts.Gate, auth.ResourceMarks, auth.ActionRead))
	mg.PUT("/:id", api.updateMark, authorize(opts.Gate, auth.ResourceMarks, auth.ActionUpdate))
	mg.DELETE("/:id", api.destroyMark, authorize(opts.Gate, auth.ResourceMarks, auth.ActionDelete))

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.createAttendance, authorize(opts.Gate, auth.ResourceAttendance, auth.ActionCreate))
	ag.GET("", api.queryAttendance, authorize(opts.Gate, auth.ResourceAttendance, auth.ActionRead))
}

// markScope derives the caller's effective filter for mark endpoints; the
// requested coordinates come from query params and are narrowed, never widened.
func markScope(ctx echo.Context, authCtx *auth.Context) (auth.Filter, error) {
	return authCtx.Scope(ctx.Request().Context(), auth.ResourceMarks, auth.Query{
		SchoolID:  ctx.QueryParam("school_id"),
		StudentID: ctx.QueryParam("student_id"),
		ClassName: ctx.QueryParam("class_name"),
		Subject:   ctx.QueryParam("subject"),
	})
}

// Handlers

func (api *academicApi) createMark(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := markScope(ctx, authCtx)
	if err != nil {
		return err
	}

	var data academic.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mark, err := api.svc.RecordMark(ctx.Request().Context(), scope, data)
	if err != nil {
		return errors.Wrap(err, "recording mark")
	}
	return ctx.JSON(http.StatusCreated, mark)
}

func (api *academicApi) queryMarks(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := markScope(ctx, authCtx)
	if err != nil {
		return err
	}

	filter := new(academic.MarkFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Mark{})
	}

	marks, err := api.svc.QueryMarks(ctx.Request().Context(), filter, scope)
	if err != nil {
		return errors.Wrap(err, "querying marks")
	}
	if marks == nil {
		marks = []academic.Mark{}
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *academicApi) updateMark(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := markScope(ctx, authCtx)
	if err != nil {
		return err
	}

	var data academic.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mark, err := api.svc.UpdateMark(ctx.Request().Context(), scope, ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrMarkNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating mark")
	}
	return ctx.JSON(http.StatusOK, mark)
}

func (api *academicApi) destroyMark(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := markScope(ctx, authCtx)
	if err != nil {
		return err
	}

	// resolve through the scoped listing so cross-tenant IDs look absent
	id := ctx.Param("id")
	marks, err := api.svc.QueryMarks(ctx.Request().Context(), new(academic.MarkFilter), scope)
	if err != nil {
		return errors.Wrap(err, "querying marks")
	}
	found := false
	for _, m := range marks {
		if m.ID == id {
			found = true
			break
		}
	}
	if !found {
		return errHttpNotFound
	}

	if err := api.svc.DeleteMarks(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting mark")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) createAttendance(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := authCtx.Scope(ctx.Request().Context(), auth.ResourceAttendance, auth.Query{
		SchoolID:  ctx.QueryParam("school_id"),
		ClassName: ctx.QueryParam("class_name"),
	})
	if err != nil {
		return err
	}

	var data academic.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.RecordAttendance(ctx.Request().Context(), scope, data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *academicApi) queryAttendance(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	scope, err := authCtx.Scope(ctx.Request().Context(), auth.ResourceAttendance, auth.Query{
		SchoolID:  ctx.QueryParam("school_id"),
		StudentID: ctx.QueryParam("student_id"),
		ClassName: ctx.QueryParam("class_name"),
	})
	if err != nil {
		return err
	}

	filter := new(academic.AttendanceFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Attendance{})
	}

	atts, err := api.svc.QueryAttendance(ctx.Request().Context(), filter, scope)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if atts == nil {
		atts = []academic.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}
