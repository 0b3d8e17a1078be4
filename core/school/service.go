package school

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("school not found")
	ErrCodeExists     = errors.New("a school with this code already exists")
	ErrStudentLimit   = errors.New("school has reached its student limit")
	ErrTeacherLimit   = errors.New("school has reached its teacher limit")
	ErrAlreadyActive  = errors.New("school is already active")
	ErrSchoolInactive = errors.New("school is not active")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string) error
		CreateSchool(ctx context.Context, sch School) (School, error)
		QuerySchools(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		GetSchoolByCode(ctx context.Context, code string) (School, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)
		DeleteSchoolsByID(ctx context.Context, ids []string) (int, error)
		// CountClasses feeds the on-read stats computation.
		CountClasses(ctx context.Context, schoolID string) (int, error)
	}

	ServiceInterface interface {
		user.EnrollmentPolicy

		Register(ctx context.Context, ns NewSchool) (School, user.User, error)
		Approve(ctx context.Context, id string) (School, error)
		Reject(ctx context.Context, id string) error
		Query(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]School, error)
		GetByID(ctx context.Context, id string) (School, error)
		Update(ctx context.Context, id string, us UpdateSchool) (School, error)
		Delete(ctx context.Context, ids ...string) error
		Stats(ctx context.Context, id string) (Stats, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*service)(nil)

// defaultSubscription caps newly registered schools until a super-admin
// raises the limits.
var defaultSubscription = Subscription{MaxStudents: 500, MaxTeachers: 50}

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService) ServiceInterface {
	return &service{repo: repo, usrRepo: usrRepo, mailSvc: mailSvc}
}

// Register creates an inactive school and its principal account. Both
// stay locked out until Approve.
func (svc *service) Register(ctx context.Context, ns NewSchool) (School, user.User, error) {
	if err := svc.repo.CheckCodeUniqueness(ctx, ns.Code); err != nil {
		if err == ErrCodeExists {
			return School{}, user.User{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return School{}, user.User{}, err
	}

	now := time.Now().UTC()
	sch, err := svc.repo.CreateSchool(ctx, School{
		Name:         ns.Name,
		Code:         ns.Code,
		Address:      ns.Address,
		Subscription: defaultSubscription,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return School{}, user.User{}, pkgerrors.Wrap(err, "creating school")
	}

	principal := user.User{
		Name:      ns.PrincipalName,
		Email:     ns.PrincipalEmail,
		Role:      auth.RolePrincipal,
		SchoolID:  sch.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	principal.SetActive(false) // activated on approval
	if err := principal.SetPassword(ns.PrincipalPassword); err != nil {
		return School{}, user.User{}, err
	}
	principal, err = svc.usrRepo.CreateUser(ctx, principal)
	if err != nil {
		return School{}, user.User{}, pkgerrors.Wrap(err, "creating principal")
	}
	return sch, principal, nil
}

// Approve activates a school and its principal accounts, then notifies them.
func (svc *service) Approve(ctx context.Context, id string) (School, error) {
	sch, err := svc.repo.GetSchool(ctx, id)
	if err != nil {
		return School{}, err
	}
	if sch.IsActive {
		return School{}, core.NewValidationError(ErrAlreadyActive)
	}
	sch.IsActive = true
	sch.UpdatedAt = time.Now().UTC()
	sch, err = svc.repo.UpdateSchool(ctx, sch)
	if err != nil {
		return School{}, pkgerrors.Wrap(err, "updating school")
	}

	principals, err := svc.usrRepo.QueryUsers(ctx,
		&user.QueryFilter{Role: string(auth.RolePrincipal)},
		auth.Filter{SchoolID: sch.ID},
		nil,
	)
	if err != nil {
		return School{}, pkgerrors.Wrap(err, "finding principals")
	}
	msgs := make([]*core.EmailMessage, 0, len(principals))
	for i := range principals {
		p := &principals[i]
		p.SetActive(true)
		p.UpdatedAt = sch.UpdatedAt
		if _, err := svc.usrRepo.UpdateUser(ctx, *p); err != nil {
			return School{}, pkgerrors.Wrap(err, "activating principal")
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: p.Name, Address: p.Email}},
			Subject:      "School Registration Approved",
			TemplateName: "school-approved",
			TemplateData: struct {
				School School
				User   user.User
			}{sch, *p},
			BodyStr: fmt.Sprintf(
				"Your school %s (%s) has been approved. You can now sign in at %s.",
				sch.Name, sch.Code, core.Conf.FrontendBaseURL,
			),
		})
	}
	svc.mailSvc.SendMessages(msgs...)
	return sch, nil
}

// Reject removes a pending registration together with the accounts
// created for it. Active schools cannot be rejected.
func (svc *service) Reject(ctx context.Context, id string) error {
	sch, err := svc.repo.GetSchool(ctx, id)
	if err != nil {
		return err
	}
	if sch.IsActive {
		return core.NewValidationError(ErrAlreadyActive)
	}

	usrs, err := svc.usrRepo.QueryUsers(ctx, &user.QueryFilter{}, auth.Filter{SchoolID: sch.ID}, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "finding school accounts")
	}
	if len(usrs) > 0 {
		ids := make([]string, 0, len(usrs))
		for _, usr := range usrs {
			ids = append(ids, usr.ID)
		}
		if _, err := svc.usrRepo.DeleteUsersByID(ctx, ids); err != nil {
			return pkgerrors.Wrap(err, "deleting school accounts")
		}
	}
	_, err = svc.repo.DeleteSchoolsByID(ctx, []string{sch.ID})
	return err
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]School, error) {
	if scope.IsMatchNone() {
		return []School{}, nil
	}
	return svc.repo.QuerySchools(ctx, filter, scope)
}

func (svc *service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchool(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSchool) (School, error) {
	sch, err := svc.repo.GetSchool(ctx, id)
	if err != nil {
		return School{}, err
	}
	sch.Name = us.Name
	sch.Address = us.Address
	if us.Subscription != nil {
		sch.Subscription = *us.Subscription
	}
	sch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteSchoolsByID(ctx, ids)
	return err
}

// Stats recomputes enrollment counters from the source tables.
func (svc *service) Stats(ctx context.Context, id string) (Stats, error) {
	if _, err := svc.repo.GetSchool(ctx, id); err != nil {
		return Stats{}, err
	}
	students, err := svc.usrRepo.CountUsersBySchool(ctx, id, auth.RoleStudent)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(err, "counting students")
	}
	teachers, err := svc.usrRepo.CountUsersBySchool(ctx, id, auth.RoleTeacher)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(err, "counting teachers")
	}
	classes, err := svc.repo.CountClasses(ctx, id)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(err, "counting classes")
	}
	return Stats{TotalStudents: students, TotalTeachers: teachers, TotalClasses: classes}, nil
}

// CheckCanEnroll enforces the school's subscription limits before a new
// student or teacher is added; implements user.EnrollmentPolicy.
func (svc *service) CheckCanEnroll(ctx context.Context, schoolID string, role auth.Role) error {
	sch, err := svc.repo.GetSchool(ctx, schoolID)
	if err != nil {
		return err
	}
	if !sch.IsActive {
		return core.NewValidationError(ErrSchoolInactive, core.FieldError{Field: "school_id", Error: ErrSchoolInactive.Error()})
	}

	var limit int
	var limitErr error
	switch role {
	case auth.RoleStudent:
		limit, limitErr = sch.Subscription.MaxStudents, ErrStudentLimit
	case auth.RoleTeacher:
		limit, limitErr = sch.Subscription.MaxTeachers, ErrTeacherLimit
	default:
		return nil
	}
	if limit <= 0 {
		return nil
	}

	count, err := svc.usrRepo.CountUsersBySchool(ctx, schoolID, role)
	if err != nil {
		return pkgerrors.Wrap(err, "counting enrollment")
	}
	if count >= limit {
		return core.NewValidationError(limitErr)
	}
	return nil
}
