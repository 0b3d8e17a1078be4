package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/auth"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateMark(ctx context.Context, m academic.Mark) (academic.Mark, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m.ID = uuid.New().String()
	repo.db.marks[m.ID] = &m
	return m, nil
}

func (repo *academicRepository) QueryMarks(ctx context.Context, filter *academic.MarkFilter, scope auth.Filter) ([]academic.Mark, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	marks := make([]academic.Mark, 0)
	for _, m := range repo.db.marks {
		if !admits(scope, str(m.SchoolID), str(m.StudentID), str(m.ClassName), str(m.Subject)) {
			continue
		}
		if filter != nil {
			if filter.Term != "" && m.Term != filter.Term {
				continue
			}
			if !filter.DateFrom.IsZero() && m.CreatedAt.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && m.CreatedAt.After(filter.DateTo) {
				continue
			}
		}
		marks = append(marks, *m)
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].CreatedAt.After(marks[j].CreatedAt) })
	return marks, nil
}

func (repo *academicRepository) GetMark(ctx context.Context, id string) (academic.Mark, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.marks[id]; ok {
		return *m, nil
	}
	return academic.Mark{}, academic.ErrMarkNotFound
}

func (repo *academicRepository) UpdateMark(ctx context.Context, m academic.Mark) (academic.Mark, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.marks[m.ID]; !ok {
		return academic.Mark{}, academic.ErrMarkNotFound
	}
	repo.db.marks[m.ID] = &m
	return m, nil
}

func (repo *academicRepository) DeleteMarksByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.marks[id]; ok {
			delete(repo.db.marks, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *academicRepository) CreateAttendance(ctx context.Context, a academic.Attendance) (academic.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a.ID = uuid.New().String()
	repo.db.attendance[a.ID] = &a
	return a, nil
}

func (repo *academicRepository) QueryAttendance(ctx context.Context, filter *academic.AttendanceFilter, scope auth.Filter) ([]academic.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]academic.Attendance, 0)
	for _, a := range repo.db.attendance {
		if !admits(scope, str(a.SchoolID), str(a.StudentID), str(a.ClassName), nil) {
			continue
		}
		if filter != nil {
			if filter.Status != "" && a.Status != filter.Status {
				continue
			}
			if !filter.DateFrom.IsZero() && a.Date.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && a.Date.After(filter.DateTo) {
				continue
			}
		}
		records = append(records, *a)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records, nil
}
