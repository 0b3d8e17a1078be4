package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
)

type classApi struct {
	svc      class.ServiceInterface
	gate     *auth.Gate
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := classApi{
		svc:      opts.ClassSvc,
		gate:     opts.Gate,
		validate: opts.Validate,
	}

	cg := g.Group("/classes", jwt)
	cg.POST("", api.create, authorize(opts.Gate, auth.ResourceClasses, auth.ActionCreate))
	cg.GET("", api.query, authorize(opts.Gate, auth.ResourceClasses, auth.ActionRead))
	cg.GET("/:id", api.retrieve, authorize(opts.Gate, auth.ResourceClasses, auth.ActionRead))
	cg.PUT("/:id", api.update, authorize(opts.Gate, auth.ResourceClasses, auth.ActionUpdate))
	cg.POST("/:id/assign-teacher", api.assignTeacher, authorize(opts.Gate, auth.ResourceClasses, auth.ActionUpdate))
	cg.DELETE("/:id", api.destroy, authorize(opts.Gate, auth.ResourceClasses, auth.ActionDelete))
}

// Handlers

func (api *classApi) create(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	scope, err := authCtx.Scope(reqCtx, auth.ResourceClasses, auth.Query{
		SchoolID: ctx.QueryParam("school_id"),
	})
	if err != nil {
		return err
	}
	if scope.SchoolID == "" {
		// a super-admin must name the target school
		return auth.ErrForbiddenScope
	}

	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Create(reqCtx, scope.SchoolID, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) query(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	scope, err := authCtx.Scope(reqCtx, auth.ResourceClasses, auth.Query{
		SchoolID:  ctx.QueryParam("school_id"),
		ClassName: ctx.QueryParam("class_name"),
	})
	if err != nil {
		return err
	}

	filter := new(class.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []class.Class{})
	}
	filter.Clean()

	classes, err := api.svc.Query(reqCtx, filter, scope)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []class.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

// getScopedClass hides classes outside the caller's tenant.
func (api *classApi) getScopedClass(ctx echo.Context, authCtx *auth.Context) (class.Class, error) {
	cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == class.ErrNotFound {
			return class.Class{}, errHttpNotFound
		}
		return class.Class{}, errors.Wrap(err, "finding class by ID")
	}
	ident := authCtx.Identity
	if ident.Role != auth.RoleSuperAdmin && cls.SchoolID != ident.SchoolID {
		return class.Class{}, errHttpNotFound
	}
	return cls, nil
}

func (api *classApi) retrieve(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	cls, err := api.getScopedClass(ctx, authCtx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	cls, err := api.getScopedClass(ctx, authCtx)
	if err != nil {
		return err
	}

	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(cls, api.validate); err != nil {
		return err
	}

	cls, err = api.svc.Update(ctx.Request().Context(), cls.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) assignTeacher(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	cls, err := api.getScopedClass(ctx, authCtx)
	if err != nil {
		return err
	}

	var data class.AssignTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err = api.svc.AssignTeacher(ctx.Request().Context(), cls.ID, data)
	if err != nil {
		return errors.Wrap(err, "assigning teacher")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	cls, err := api.getScopedClass(ctx, authCtx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), cls.ID); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}
