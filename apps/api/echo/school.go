package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/school"
)

type schoolApi struct {
	svc      school.ServiceInterface
	gate     *auth.Gate
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := schoolApi{
		svc:      opts.SchoolSvc,
		gate:     opts.Gate,
		validate: opts.Validate,
	}

	sg := g.Group("/schools")

	// public registration; the school stays inactive until approved
	sg.POST("/register", api.register)

	ag := sg.Group("", jwt)
	ag.GET("", api.query, authorize(opts.Gate, auth.ResourceSchools, auth.ActionRead))
	ag.POST("/:id/approve", api.approve, authorize(opts.Gate, auth.ResourceSchools, auth.ActionUpdate, auth.RoleSuperAdmin))
	ag.POST("/:id/reject", api.reject, authorize(opts.Gate, auth.ResourceSchools, auth.ActionDelete, auth.RoleSuperAdmin))
	ag.GET("/:id", api.retrieve, authorize(opts.Gate, auth.ResourceSchools, auth.ActionRead))
	ag.GET("/:id/stats", api.stats, authorize(opts.Gate, auth.ResourceSchools, auth.ActionRead))
	ag.PUT("/:id", api.update, authorize(opts.Gate, auth.ResourceSchools, auth.ActionUpdate, auth.RoleSuperAdmin))
	ag.DELETE("/:id", api.destroy, authorize(opts.Gate, auth.ResourceSchools, auth.ActionDelete, auth.RoleSuperAdmin))
}

// Handlers

func (api *schoolApi) register(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, principal, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering school")
	}
	return ctx.JSON(http.StatusCreated, RegisterSchoolResponse{School: sch, PrincipalID: principal.ID})
}

func (api *schoolApi) approve(ctx echo.Context) error {
	sch, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "approving school")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) reject(ctx echo.Context) error {
	if err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "rejecting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) query(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	scope, err := authCtx.Scope(reqCtx, auth.ResourceSchools, auth.Query{
		SchoolID: ctx.QueryParam("school_id"),
	})
	if err != nil {
		return err
	}

	filter := new(school.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.School{})
	}
	filter.Clean()

	schools, err := api.svc.Query(reqCtx, filter, scope)
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []school.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

// getScopedSchool hides schools outside the caller's tenant.
func (api *schoolApi) getScopedSchool(ctx echo.Context, authCtx *auth.Context) (school.School, error) {
	sch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return school.School{}, errHttpNotFound
		}
		return school.School{}, errors.Wrap(err, "finding school by ID")
	}
	ident := authCtx.Identity
	if ident.Role != auth.RoleSuperAdmin && sch.ID != ident.SchoolID {
		return school.School{}, errHttpNotFound
	}
	return sch, nil
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	sch, err := api.getScopedSchool(ctx, authCtx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) stats(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	sch, err := api.getScopedSchool(ctx, authCtx)
	if err != nil {
		return err
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "computing school stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *schoolApi) update(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	sch, err := api.getScopedSchool(ctx, authCtx)
	if err != nil {
		return err
	}

	var data school.UpdateSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err := data.Validate(sch, api.validate); err != nil {
		return err
	}

	sch, err = api.svc.Update(ctx.Request().Context(), sch.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating school")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	sch, err := api.getScopedSchool(ctx, authCtx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), sch.ID); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type RegisterSchoolResponse struct {
	School      school.School `json:"school"`
	PrincipalID string        `json:"principal_id"`
}
