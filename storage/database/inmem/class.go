package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) all() []class.Class {
	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ClassName < classes[j].ClassName })
	return classes
}

func (repo *classRepository) CheckNameUniqueness(ctx context.Context, schoolID, className string, excluded ...class.Class) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excludedIDs := make(map[string]bool, len(excluded))
	for _, c := range excluded {
		excludedIDs[c.ID] = true
	}
	for _, cls := range repo.db.classes {
		if cls.SchoolID == schoolID && cls.ClassName == className && !excludedIDs[cls.ID] {
			return class.ErrClassExists
		}
	}
	return nil
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, scope auth.Filter) ([]class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes := make([]class.Class, 0)
	for _, cls := range repo.all() {
		if !admits(scope, str(cls.SchoolID), nil, str(cls.ClassName), nil) {
			continue
		}
		if filter != nil && filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(cls.ClassName), s) &&
				!strings.Contains(strings.ToLower(cls.Section), s) {
				continue
			}
		}
		classes = append(classes, cls)
	}
	return classes, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classes[cls.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) DeleteClassesByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.classes[id]; ok {
			delete(repo.db.classes, id)
			cnt++
		}
	}
	return cnt, nil
}
