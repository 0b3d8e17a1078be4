package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUserExists     = errors.New("a user with this username or email already exists")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrNotATeacher    = errors.New("user is not a teacher")
)

type (
	Repository interface {
		auth.AssignmentLoader

		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND on available QueryFilter fields within the
		// rows admitted by the mandatory scope filter. QueryFilter.Search
		// does a case-insensitive match on one of Name, Username or Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, scope auth.Filter, ordering []core.DBOrdering) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids []string) (int, error)
		CountUsersBySchool(ctx context.Context, schoolID string, role auth.Role) (int, error)
	}

	// EnrollmentPolicy is consulted before adding a student or teacher to
	// a school; the school service implements it against subscription limits.
	EnrollmentPolicy interface {
		CheckCanEnroll(ctx context.Context, schoolID string, role auth.Role) error
	}

	ServiceInterface interface {
		CheckUniqueness(uname, email string, excludedUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, scope auth.Filter, ordering []core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		SetAssignments(ctx context.Context, teacherID string, ua UpdateAssignment) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, ids ...string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo       Repository
		mailSvc    core.EmailService
		enrollment EnrollmentPolicy // nil disables limit checks
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, enrollment EnrollmentPolicy) ServiceInterface {
	return &service{repo: repo, mailSvc: mailSvc, enrollment: enrollment}
}

func (svc *service) CheckUniqueness(uname, email string, excludedUsers ...User) error {
	// context-free by design: called from input validation paths
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, excludedUsers); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		case ErrUserExists:
			return core.NewValidationError(err,
				core.FieldError{Field: "username", Error: err.Error()},
				core.FieldError{Field: "email", Error: err.Error()},
			)
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	role := auth.Role(nu.Role)
	if svc.enrollment != nil && (role == auth.RoleStudent || role == auth.RoleTeacher) {
		if err := svc.enrollment.CheckCanEnroll(ctx, nu.SchoolID, role); err != nil {
			return User{}, err
		}
	}

	now := time.Now().UTC()
	usr := User{
		Name:            nu.Name,
		Username:        nu.Username,
		Email:           nu.Email,
		Role:            role,
		SchoolID:        nu.SchoolID,
		ClassName:       nu.ClassName,
		AssignedClasses: nu.AssignedClasses,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, scope auth.Filter, ordering []core.DBOrdering) ([]User, error) {
	if scope.IsMatchNone() {
		return []User{}, nil
	}
	return svc.repo.QueryUsers(ctx, filter, scope, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: []string{uname, uname}})
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}

	usr.Name = uu.Name
	usr.Username = uu.Username
	usr.Email = uu.Email
	if uu.IsActive != nil {
		usr.IsActive = uu.IsActive
	}
	if uu.ClassName != nil {
		usr.ClassName = *uu.ClassName
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetAssignments(ctx context.Context, teacherID string, ua UpdateAssignment) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: teacherID})
	if err != nil {
		return User{}, err
	}
	if !usr.IsTeacher() {
		return User{}, core.NewValidationError(ErrNotATeacher)
	}
	usr.AssignedClasses = ua.AssignedClasses
	usr.AssignedSubjects = ua.AssignedSubjects
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(ctx, ids)
	return err
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			User  User
			UID   string
			Token string
		}{usr, EncodeUID(usr), token},
		BodyStr: fmt.Sprintf(
			"Use the link below to reset your password.\n%s/password-reset?uid=%s&token=%s",
			core.Conf.FrontendBaseURL, EncodeUID(usr), token,
		),
	})
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return pkgerrors.Wrap(err, "finding user by ID")
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateUser(ctx, usr); err != nil {
		return pkgerrors.Wrap(err, "updating user")
	}
	return nil
}
