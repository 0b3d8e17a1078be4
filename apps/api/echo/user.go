package echoapi

import (
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/user"
)

var errNoPermsToSetRole = "not enough rights to set this role"

type userApi struct {
	svc      user.ServiceInterface
	gate     *auth.Gate
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := userApi{
		svc:      opts.UserSvc,
		gate:     opts.Gate,
		validate: opts.Validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ug.POST("/login", api.login)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.POST("", api.create, authorize(opts.Gate, auth.ResourceUsers, auth.ActionCreate))
	ag.GET("", api.query, authorize(opts.Gate, auth.ResourceUsers, auth.ActionRead))
	ag.DELETE("", api.destroyMultiple, authorize(opts.Gate, auth.ResourceUsers, auth.ActionDelete))

	// detail endpoints
	dg := ag.Group("/:id")
	dg.GET("", api.retrieve, authorize(opts.Gate, auth.ResourceUsers, auth.ActionRead))
	dg.PUT("", api.update, authorize(opts.Gate, auth.ResourceUsers, auth.ActionUpdate))
	dg.DELETE("", api.destroy, authorize(opts.Gate, auth.ResourceUsers, auth.ActionDelete))
	dg.PUT("/assignments", api.setAssignments, authorize(opts.Gate, auth.ResourceTeachers, auth.ActionUpdate))

	// student listing is a separate resource so teachers/students can
	// read it under their own scope
	sg := g.Group("/students", jwt)
	sg.GET("", api.queryStudents, authorize(opts.Gate, auth.ResourceStudents, auth.ActionRead))
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}

	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	// non-super-admins create accounts in their own school only
	if authCtx.Identity.Role != auth.RoleSuperAdmin {
		if data.SchoolID == "" {
			data.SchoolID = authCtx.Identity.SchoolID
		} else if data.SchoolID != authCtx.Identity.SchoolID {
			return auth.ErrForbiddenScope
		}
	}

	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	// caller cannot grant a role above their own
	if auth.RolePriority(auth.Role(data.Role)) > auth.RolePriority(authCtx.Identity.Role) {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: errNoPermsToSetRole})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	scope, err := authCtx.Scope(reqCtx, auth.ResourceUsers, auth.Query{
		SchoolID:  ctx.QueryParam("school_id"),
		ClassName: ctx.QueryParam("class_name"),
	})
	if err != nil {
		return err
	}

	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, "name", "username", "created_at", "is_active")

	users, err := api.svc.Query(reqCtx, filter, scope, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryStudents(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	scope, err := authCtx.Scope(reqCtx, auth.ResourceStudents, auth.Query{
		SchoolID:  ctx.QueryParam("school_id"),
		ClassName: ctx.QueryParam("class_name"),
		StudentID: ctx.QueryParam("student_id"),
	})
	if err != nil {
		return err
	}

	filter := &user.QueryFilter{
		Search:    ctx.QueryParam("search"),
		Role:      string(auth.RoleStudent),
		ClassName: ctx.QueryParam("class_name"),
	}
	filter.Clean()
	filter.Role = string(auth.RoleStudent) // not overridable

	students, err := api.svc.Query(reqCtx, filter, scope, nil)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []user.User{}
	}
	return ctx.JSON(http.StatusOK, students)
}

// getScopedUser loads the detail object and hides it when it falls
// outside the caller's tenant.
func (api *userApi) getScopedUser(ctx echo.Context, authCtx *auth.Context) (user.User, error) {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errHttpNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}

	ident := authCtx.Identity
	if ident.Role != auth.RoleSuperAdmin && usr.SchoolID != ident.SchoolID {
		return user.User{}, errHttpNotFound
	}
	return usr, nil
}

func (api *userApi) retrieve(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	usr, err := api.getScopedUser(ctx, authCtx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	usr, err := api.getScopedUser(ctx, authCtx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(usr, api.validate, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setAssignments(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	usr, err := api.getScopedUser(ctx, authCtx)
	if err != nil {
		return err
	}

	var data user.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err = api.svc.SetAssignments(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "setting assignments")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}
	usr, err := api.getScopedUser(ctx, authCtx)
	if err != nil {
		return err
	}

	// Say No to Suicide! callers cannot delete themselves
	if usr.ID == authCtx.Identity.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	authCtx, err := getAuthContext(ctx)
	if err != nil {
		return err
	}

	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// Say No to Suicide! callers cannot delete themselves
	sort.Strings(query.IDs)
	if i := sort.SearchStrings(query.IDs, authCtx.Identity.ID); i < len(query.IDs) {
		if match := query.IDs[i]; authCtx.Identity.ID == match {
			return errHttpForbidden
		}
	}

	// non-super-admins can only delete within their own school
	reqCtx := ctx.Request().Context()
	if authCtx.Identity.Role != auth.RoleSuperAdmin {
		for _, id := range query.IDs {
			usr, err := api.svc.GetByID(reqCtx, id)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					continue
				}
				return errors.Wrap(err, "finding user by ID")
			}
			if usr.SchoolID != authCtx.Identity.SchoolID {
				return auth.ErrForbiddenScope
			}
		}
	}

	if err := api.svc.Delete(reqCtx, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
