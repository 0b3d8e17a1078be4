package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = uuid.New().String()
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, scope auth.Filter) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]course.Course, 0)
	for _, c := range repo.db.courses {
		if !admits(scope, str(c.SchoolID), nil, str(c.ClassName), str(c.Subject)) {
			continue
		}
		if filter != nil && filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Title), s) &&
				!strings.Contains(strings.ToLower(c.Subject), s) &&
				!strings.Contains(strings.ToLower(c.Description), s) {
				continue
			}
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.courses[id]; ok {
			delete(repo.db.courses, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *courseRepository) CreateQuiz(ctx context.Context, q course.Quiz) (course.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	q.ID = uuid.New().String()
	repo.db.quizzes[q.ID] = &q
	return q, nil
}

// QueryQuizzes resolves the owning course so class/subject scope
// dimensions apply even though the quiz does not carry them.
func (repo *courseRepository) QueryQuizzes(ctx context.Context, scope auth.Filter) ([]course.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	quizzes := make([]course.Quiz, 0)
	for _, q := range repo.db.quizzes {
		var className, subject *string
		if c, ok := repo.db.courses[q.CourseID]; ok {
			className, subject = str(c.ClassName), str(c.Subject)
		}
		if !admits(scope, str(q.SchoolID), nil, className, subject) {
			continue
		}
		quizzes = append(quizzes, *q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt) })
	return quizzes, nil
}

func (repo *courseRepository) GetQuiz(ctx context.Context, id string) (course.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if q, ok := repo.db.quizzes[id]; ok {
		return *q, nil
	}
	return course.Quiz{}, course.ErrQuizNotFound
}

func (repo *courseRepository) UpdateQuiz(ctx context.Context, q course.Quiz) (course.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.quizzes[q.ID]; !ok {
		return course.Quiz{}, course.ErrQuizNotFound
	}
	repo.db.quizzes[q.ID] = &q
	return q, nil
}

func (repo *courseRepository) DeleteQuizzesByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.quizzes[id]; ok {
			delete(repo.db.quizzes, id)
			cnt++
		}
	}
	return cnt, nil
}
