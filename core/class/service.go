package class

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/user"
)

var (
	// errors
	ErrNotFound    = errors.New("class not found")
	ErrClassExists = errors.New("a class with this name already exists in this school")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, schoolID, className string, excluded ...Class) error
		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryClasses(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids []string) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, schoolID string, nc NewClass) (Class, error)
		Query(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
		AssignTeacher(ctx context.Context, id string, at AssignTeacher) (Class, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository) ServiceInterface {
	return &service{repo: repo, usrRepo: usrRepo}
}

func (svc *service) Create(ctx context.Context, schoolID string, nc NewClass) (Class, error) {
	if err := svc.repo.CheckNameUniqueness(ctx, schoolID, nc.ClassName); err != nil {
		if err == ErrClassExists {
			return Class{}, core.NewValidationError(err, core.FieldError{Field: "class_name", Error: err.Error()})
		}
		return Class{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateClass(ctx, Class{
		SchoolID:  schoolID,
		ClassName: nc.ClassName,
		Section:   nc.Section,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]Class, error) {
	if scope.IsMatchNone() {
		return []Class{}, nil
	}
	return svc.repo.QueryClasses(ctx, filter, scope)
}

func (svc *service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.ClassName != cls.ClassName {
		if err := svc.repo.CheckNameUniqueness(ctx, cls.SchoolID, uc.ClassName, cls); err != nil {
			if err == ErrClassExists {
				return Class{}, core.NewValidationError(err, core.FieldError{Field: "class_name", Error: err.Error()})
			}
			return Class{}, err
		}
	}
	cls.ClassName = uc.ClassName
	if uc.Section != "" {
		cls.Section = uc.Section
	}
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

// AssignTeacher makes the teacher the class owner and extends their
// assigned classes so the scope filter admits the new class on the
// teacher's next request.
func (svc *service) AssignTeacher(ctx context.Context, id string, at AssignTeacher) (Class, error) {
	cls, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}

	teacher, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: at.TeacherID})
	if err != nil {
		if err == user.ErrNotFound {
			return Class{}, core.NewValidationError(err, core.FieldError{Field: "teacher_id", Error: err.Error()})
		}
		return Class{}, pkgerrors.Wrap(err, "finding teacher")
	}
	if !teacher.IsTeacher() || teacher.SchoolID != cls.SchoolID {
		return Class{}, core.NewValidationError(user.ErrNotATeacher, core.FieldError{Field: "teacher_id", Error: user.ErrNotATeacher.Error()})
	}

	cls.ClassTeacherID = teacher.ID
	cls.UpdatedAt = time.Now().UTC()
	cls, err = svc.repo.UpdateClass(ctx, cls)
	if err != nil {
		return Class{}, pkgerrors.Wrap(err, "updating class")
	}

	if !contains(teacher.AssignedClasses, cls.ClassName) {
		teacher.AssignedClasses = append(teacher.AssignedClasses, cls.ClassName)
		teacher.UpdatedAt = cls.UpdatedAt
		if _, err := svc.usrRepo.UpdateUser(ctx, teacher); err != nil {
			return Class{}, pkgerrors.Wrap(err, "updating teacher assignment")
		}
	}
	return cls, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteClassesByID(ctx, ids)
	return err
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
