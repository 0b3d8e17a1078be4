package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) all() []school.School {
	schools := make([]school.School, 0, len(repo.db.schools))
	for _, s := range repo.db.schools {
		schools = append(schools, *s)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })
	return schools
}

func (repo *schoolRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sch := range repo.db.schools {
		if sch.Code == code {
			return school.ErrCodeExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sch.ID = uuid.New().String()
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context, filter *school.QueryFilter, scope auth.Filter) ([]school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	schools := make([]school.School, 0)
	for _, sch := range repo.all() {
		// the school's own ID is its tenant dimension
		if !admits(scope, str(sch.ID), nil, nil, nil) {
			continue
		}
		if filter != nil {
			if filter.Search != "" {
				s := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(sch.Name), s) &&
					!strings.Contains(strings.ToLower(sch.Code), s) {
					continue
				}
			}
			if filter.IsActive != nil && sch.IsActive != *filter.IsActive {
				continue
			}
		}
		schools = append(schools, sch)
	}
	return schools, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) GetSchoolByCode(ctx context.Context, code string) (school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sch := range repo.db.schools {
		if sch.Code == code {
			return *sch, nil
		}
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.schools[sch.ID]; !ok {
		return school.School{}, school.ErrNotFound
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) DeleteSchoolsByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.schools[id]; ok {
			delete(repo.db.schools, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *schoolRepository) CountClasses(ctx context.Context, schoolID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var cnt int
	for _, cls := range repo.db.classes {
		if cls.SchoolID == schoolID {
			cnt++
		}
	}
	return cnt, nil
}
