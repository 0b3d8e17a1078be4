package course

import (
	"context"
	"errors"
	"time"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
)

var (
	// errors
	ErrCourseNotFound = errors.New("course not found")
	ErrQuizNotFound   = errors.New("quiz not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []string) (int, error)

		CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		QueryQuizzes(ctx context.Context, scope auth.Filter) ([]Quiz, error)
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		DeleteQuizzesByID(ctx context.Context, ids []string) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, scope auth.Filter, createdBy string, nc NewCourse) (Course, error)
		Query(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Update(ctx context.Context, scope auth.Filter, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, ids ...string) error

		CreateQuiz(ctx context.Context, scope auth.Filter, createdBy string, nq NewQuiz) (Quiz, error)
		QueryQuizzes(ctx context.Context, scope auth.Filter) ([]Quiz, error)
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		UpdateQuiz(ctx context.Context, scope auth.Filter, id string, uq UpdateQuiz) (Quiz, error)
		DeleteQuizzes(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, scope auth.Filter, createdBy string, nc NewCourse) (Course, error) {
	if scope.IsMatchNone() || scope.SchoolID == "" {
		return Course{}, auth.ErrForbiddenScope
	}
	if scope.ClassNames != nil && !inList(scope.ClassNames, nc.ClassName) {
		return Course{}, auth.ErrForbiddenScope
	}
	if scope.Subjects != nil && !inList(scope.Subjects, nc.Subject) {
		return Course{}, auth.ErrForbiddenScope
	}
	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		SchoolID:    scope.SchoolID,
		Title:       nc.Title,
		Subject:     nc.Subject,
		ClassName:   nc.ClassName,
		Description: nc.Description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, scope auth.Filter) ([]Course, error) {
	if scope.IsMatchNone() {
		return []Course{}, nil
	}
	return svc.repo.QueryCourses(ctx, filter, scope)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) Update(ctx context.Context, scope auth.Filter, id string, uc UpdateCourse) (Course, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if scope.SchoolID != "" && scope.SchoolID != c.SchoolID {
		return Course{}, auth.ErrForbiddenScope
	}
	c.Title = uc.Title
	if uc.Description != "" {
		c.Description = uc.Description
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCoursesByID(ctx, ids)
	return err
}

func (svc *service) CreateQuiz(ctx context.Context, scope auth.Filter, createdBy string, nq NewQuiz) (Quiz, error) {
	if scope.IsMatchNone() || scope.SchoolID == "" {
		return Quiz{}, auth.ErrForbiddenScope
	}
	c, err := svc.repo.GetCourse(ctx, nq.CourseID)
	if err != nil {
		if err == ErrCourseNotFound {
			return Quiz{}, core.NewValidationError(err, core.FieldError{Field: "course_id", Error: err.Error()})
		}
		return Quiz{}, err
	}
	if c.SchoolID != scope.SchoolID {
		return Quiz{}, auth.ErrForbiddenScope
	}
	now := time.Now().UTC()
	return svc.repo.CreateQuiz(ctx, Quiz{
		SchoolID:  scope.SchoolID,
		CourseID:  nq.CourseID,
		Title:     nq.Title,
		Questions: nq.Questions,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryQuizzes(ctx context.Context, scope auth.Filter) ([]Quiz, error) {
	if scope.IsMatchNone() {
		return []Quiz{}, nil
	}
	return svc.repo.QueryQuizzes(ctx, scope)
}

func (svc *service) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	return svc.repo.GetQuiz(ctx, id)
}

func (svc *service) UpdateQuiz(ctx context.Context, scope auth.Filter, id string, uq UpdateQuiz) (Quiz, error) {
	q, err := svc.repo.GetQuiz(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	if scope.SchoolID != "" && scope.SchoolID != q.SchoolID {
		return Quiz{}, auth.ErrForbiddenScope
	}
	q.Title = uq.Title
	if uq.Questions != nil {
		q.Questions = uq.Questions
	}
	q.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateQuiz(ctx, q)
}

func (svc *service) DeleteQuizzes(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteQuizzesByID(ctx, ids)
	return err
}

func inList(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
