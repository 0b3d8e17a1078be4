package auth

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// Query carries the caller-requested narrowing of a resource query.
	// All fields are optional; an empty Query means "everything visible".
	Query struct {
		SchoolID  string
		ClassName string
		Subject   string
		StudentID string
	}

	// Filter is the mandatory restriction derived from an Identity. It is
	// the only query shape repositories accept for list reads, so an
	// unscoped cross-tenant query cannot be expressed by accident.
	//
	// Exact fields restrict to a single value; the plural fields are IN
	// restrictions derived from teacher assignments. A nil ClassNames or
	// Subjects imposes no restriction on that dimension, while an empty
	// non-nil slice matches nothing: a teacher assigned classes but no
	// subjects sees no subject-scoped rows. None short-circuits to a
	// guaranteed-empty result set.
	Filter struct {
		SchoolID   string
		StudentID  string
		ClassName  string
		Subject    string
		ClassNames []string
		Subjects   []string
		None       bool
	}

	// Assignment is the subset of a school's classes/subjects a teacher
	// is permitted to act upon.
	Assignment struct {
		Classes  []string
		Subjects []string
	}

	// AssignmentLoader loads a teacher's current assignment; implemented
	// by the user repository. Read per request, never cached, so a
	// permission change is reflected on the next request.
	AssignmentLoader interface {
		TeacherAssignment(ctx context.Context, teacherID string) (Assignment, error)
	}

	// Scoper derives mandatory filters from identities.
	Scoper struct {
		assignments AssignmentLoader
	}
)

// MatchNone is the filter guaranteed to match zero rows.
func MatchNone() Filter { return Filter{None: true} }

func (f Filter) IsMatchNone() bool { return f.None }

func NewScoper(assignments AssignmentLoader) *Scoper {
	return &Scoper{assignments: assignments}
}

// subjectScoped lists the resources carrying a subject dimension; only
// these get the assigned-subjects restriction for teachers.
var subjectScoped = map[Resource]bool{
	ResourceMarks:   true,
	ResourceCourses: true,
	ResourceQuizzes: true,
}

// DeriveFilter merges the identity's mandatory scope into the requested
// query:
//
//   - super-admin: pass-through; explicit narrowing is honored.
//   - admin/principal: restricted to the identity's school; an explicit
//     non-matching school is ErrForbiddenScope.
//   - teacher: school restriction + assigned classes (and subjects where
//     applicable). Zero assigned classes yields MatchNone, never an
//     unscoped filter.
//   - student: StudentID is forced to the identity's own ID; a different
//     requested StudentID is overridden, not rejected.
func (s *Scoper) DeriveFilter(ctx context.Context, ident Identity, resource Resource, q Query) (Filter, error) {
	if ident.IsZero() {
		return Filter{}, ErrUnauthenticated
	}

	switch ident.Role {
	case RoleSuperAdmin:
		return Filter{
			SchoolID:  q.SchoolID,
			StudentID: q.StudentID,
			ClassName: q.ClassName,
			Subject:   q.Subject,
		}, nil

	case RoleAdmin, RolePrincipal:
		if err := checkTenant(ident, q); err != nil {
			return Filter{}, err
		}
		return Filter{
			SchoolID:  ident.SchoolID,
			StudentID: q.StudentID,
			ClassName: q.ClassName,
			Subject:   q.Subject,
		}, nil

	case RoleTeacher:
		if err := checkTenant(ident, q); err != nil {
			return Filter{}, err
		}
		asg, err := s.assignments.TeacherAssignment(ctx, ident.ID)
		if err != nil {
			return Filter{}, errors.Wrap(err, "loading teacher assignment")
		}
		// absence of assignment must never mean "see everything"
		if len(asg.Classes) == 0 {
			return MatchNone(), nil
		}
		f := Filter{
			SchoolID:   ident.SchoolID,
			StudentID:  q.StudentID,
			ClassName:  q.ClassName,
			Subject:    q.Subject,
			ClassNames: asg.Classes,
		}
		if subjectScoped[resource] {
			f.Subjects = asg.Subjects
		}
		return f, nil

	case RoleStudent:
		if err := checkTenant(ident, q); err != nil {
			return Filter{}, err
		}
		// own records only; requested StudentID is silently narrowed
		return Filter{
			SchoolID:  ident.SchoolID,
			StudentID: ident.ID,
			ClassName: q.ClassName,
			Subject:   q.Subject,
		}, nil
	}

	return Filter{}, ErrRoleNotPermitted
}

// checkTenant rejects an explicit cross-school query from a non-super-admin.
func checkTenant(ident Identity, q Query) error {
	if q.SchoolID != "" && q.SchoolID != ident.SchoolID {
		return ErrForbiddenScope
	}
	return nil
}
