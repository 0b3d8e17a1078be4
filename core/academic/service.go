package academic

import (
	"context"
	"errors"
	"time"

	"github.com/sharath2004/edubridge/core/auth"
)

var (
	// errors
	ErrMarkNotFound = errors.New("mark not found")
)

type (
	Repository interface {
		CreateMark(ctx context.Context, m Mark) (Mark, error)
		QueryMarks(ctx context.Context, filter *MarkFilter, scope auth.Filter) ([]Mark, error)
		GetMark(ctx context.Context, id string) (Mark, error)
		UpdateMark(ctx context.Context, m Mark) (Mark, error)
		DeleteMarksByID(ctx context.Context, ids []string) (int, error)

		CreateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		QueryAttendance(ctx context.Context, filter *AttendanceFilter, scope auth.Filter) ([]Attendance, error)
	}

	ServiceInterface interface {
		RecordMark(ctx context.Context, scope auth.Filter, nm NewMark) (Mark, error)
		QueryMarks(ctx context.Context, filter *MarkFilter, scope auth.Filter) ([]Mark, error)
		UpdateMark(ctx context.Context, scope auth.Filter, id string, nm NewMark) (Mark, error)
		DeleteMarks(ctx context.Context, ids ...string) error

		RecordAttendance(ctx context.Context, scope auth.Filter, na NewAttendance) (Attendance, error)
		QueryAttendance(ctx context.Context, filter *AttendanceFilter, scope auth.Filter) ([]Attendance, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

// admits reports whether a row with the given coordinates falls inside
// the mandatory scope; writes outside the caller's scope are rejected
// with the same error the read path surfaces as 403.
func admits(scope auth.Filter, schoolID, studentID, className, subject string) bool {
	if scope.IsMatchNone() {
		return false
	}
	if scope.SchoolID != "" && scope.SchoolID != schoolID {
		return false
	}
	if scope.StudentID != "" && scope.StudentID != studentID {
		return false
	}
	if scope.ClassNames != nil && !inList(scope.ClassNames, className) {
		return false
	}
	if subject != "" && scope.Subjects != nil && !inList(scope.Subjects, subject) {
		return false
	}
	return true
}

func inList(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func (svc *service) RecordMark(ctx context.Context, scope auth.Filter, nm NewMark) (Mark, error) {
	// a super-admin must name the target school
	if scope.SchoolID == "" || !admits(scope, scope.SchoolID, nm.StudentID, nm.ClassName, nm.Subject) {
		return Mark{}, auth.ErrForbiddenScope
	}
	now := time.Now().UTC()
	return svc.repo.CreateMark(ctx, Mark{
		SchoolID:  scope.SchoolID,
		StudentID: nm.StudentID,
		ClassName: nm.ClassName,
		Subject:   nm.Subject,
		Term:      nm.Term,
		Score:     nm.Score,
		MaxScore:  nm.MaxScore,
		Remarks:   nm.Remarks,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryMarks(ctx context.Context, filter *MarkFilter, scope auth.Filter) ([]Mark, error) {
	if scope.IsMatchNone() {
		return []Mark{}, nil
	}
	return svc.repo.QueryMarks(ctx, filter, scope)
}

func (svc *service) UpdateMark(ctx context.Context, scope auth.Filter, id string, nm NewMark) (Mark, error) {
	m, err := svc.repo.GetMark(ctx, id)
	if err != nil {
		return Mark{}, err
	}
	// the existing row and the updated coordinates must both be in scope
	if !admits(scope, m.SchoolID, m.StudentID, m.ClassName, m.Subject) ||
		!admits(scope, m.SchoolID, nm.StudentID, nm.ClassName, nm.Subject) {
		return Mark{}, auth.ErrForbiddenScope
	}
	m.StudentID = nm.StudentID
	m.ClassName = nm.ClassName
	m.Subject = nm.Subject
	m.Term = nm.Term
	m.Score = nm.Score
	m.MaxScore = nm.MaxScore
	m.Remarks = nm.Remarks
	m.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMark(ctx, m)
}

func (svc *service) DeleteMarks(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteMarksByID(ctx, ids)
	return err
}

func (svc *service) RecordAttendance(ctx context.Context, scope auth.Filter, na NewAttendance) (Attendance, error) {
	if scope.SchoolID == "" || !admits(scope, scope.SchoolID, na.StudentID, na.ClassName, "") {
		return Attendance{}, auth.ErrForbiddenScope
	}
	return svc.repo.CreateAttendance(ctx, Attendance{
		SchoolID:  scope.SchoolID,
		StudentID: na.StudentID,
		ClassName: na.ClassName,
		Date:      na.Date,
		Status:    na.Status,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) QueryAttendance(ctx context.Context, filter *AttendanceFilter, scope auth.Filter) ([]Attendance, error) {
	if scope.IsMatchNone() {
		return []Attendance{}, nil
	}
	return svc.repo.QueryAttendance(ctx, filter, scope)
}
