package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/course"
)

type dbCourse struct {
	ID          string      `db:"id"`
	SchoolID    string      `db:"school_id"`
	Title       string      `db:"title"`
	Subject     string      `db:"subject"`
	ClassName   string      `db:"class_name"`
	Description string      `db:"description"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type dbQuiz struct {
	ID        string      `db:"id"`
	SchoolID  string      `db:"school_id"`
	CourseID  string      `db:"course_id"`
	Title     string      `db:"title"`
	Questions []byte      `db:"questions"`
	CreatedBy null.String `db:"created_by"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) packCourse(c course.Course) dbCourse {
	return dbCourse{
		ID:          c.ID,
		SchoolID:    c.SchoolID,
		Title:       c.Title,
		Subject:     c.Subject,
		ClassName:   c.ClassName,
		Description: c.Description,
		CreatedBy:   null.NewString(c.CreatedBy, c.CreatedBy != ""),
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) unpackCourse(c dbCourse) course.Course {
	return course.Course{
		ID:          c.ID,
		SchoolID:    c.SchoolID,
		Title:       c.Title,
		Subject:     c.Subject,
		ClassName:   c.ClassName,
		Description: c.Description,
		CreatedBy:   c.CreatedBy.String,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (repo courseRepository) packQuiz(q course.Quiz) (dbQuiz, error) {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return dbQuiz{}, errors.Wrap(err, "encoding quiz questions")
	}
	return dbQuiz{
		ID:        q.ID,
		SchoolID:  q.SchoolID,
		CourseID:  q.CourseID,
		Title:     q.Title,
		Questions: questions,
		CreatedBy: null.NewString(q.CreatedBy, q.CreatedBy != ""),
		CreatedAt: q.CreatedAt.UTC(),
		UpdatedAt: q.UpdatedAt.UTC(),
	}, nil
}

func (repo courseRepository) unpackQuiz(q dbQuiz) (course.Quiz, error) {
	var questions []course.QuizQuestion
	if err := json.Unmarshal(q.Questions, &questions); err != nil {
		return course.Quiz{}, errors.Wrap(err, "decoding quiz questions")
	}
	return course.Quiz{
		ID:        q.ID,
		SchoolID:  q.SchoolID,
		CourseID:  q.CourseID,
		Title:     q.Title,
		Questions: questions,
		CreatedBy: q.CreatedBy.String,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}, nil
}

const courseCols = `id, school_id, title, subject, class_name, description, created_by, created_at, updated_at`

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	c.ID = uuid.New().String()
	row := repo.packCourse(c)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, school_id, title, subject, class_name, description, created_by, created_at, updated_at)
		VALUES (:id, :school_id, :title, :subject, :class_name, :description, :created_by, :created_at, :updated_at)`, row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return repo.unpackCourse(row), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, scope auth.Filter) ([]course.Course, error) {
	conds, args := scopeWhere(scope, scopeCols{
		school:  "school_id",
		class:   "class_name",
		subject: "subject",
	})

	if filter != nil && filter.Search != "" {
		conds = append(conds, "(title ILIKE ? OR subject ILIKE ? OR description ILIKE ?)")
		val := "%" + filter.Search + "%"
		args = append(args, val, val, val)
	}

	q, qargs, err := buildQuery(repo.db, `SELECT `+courseCols+` FROM course`, conds, args, "ORDER BY title ASC")
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	var rows []dbCourse
	if err := repo.db.SelectContext(ctx, &rows, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, c := range rows {
		courses = append(courses, repo.unpackCourse(c))
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrCourseNotFound
	}
	var c dbCourse
	err := repo.db.GetContext(ctx, &c,
		repo.db.Rebind(`SELECT `+courseCols+` FROM course WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrCourseNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return repo.unpackCourse(c), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	row := repo.packCourse(c)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE course SET title = :title, subject = :subject, class_name = :class_name,
			description = :description, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrCourseNotFound
	}
	return repo.unpackCourse(row), nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, qargs, err := buildQuery(repo.db, `DELETE FROM course`, []string{"id IN (?)"}, []interface{}{ids}, "")
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	res, err := repo.db.ExecContext(ctx, q, qargs...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	return int(cnt), nil
}

const quizCols = `q.id, q.school_id, q.course_id, q.title, q.questions, q.created_by, q.created_at, q.updated_at`

func (repo courseRepository) CreateQuiz(ctx context.Context, qz course.Quiz) (course.Quiz, error) {
	qz.ID = uuid.New().String()
	row, err := repo.packQuiz(qz)
	if err != nil {
		return course.Quiz{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO quiz (id, school_id, course_id, title, questions, created_by, created_at, updated_at)
		VALUES (:id, :school_id, :course_id, :title, :questions, :created_by, :created_at, :updated_at)`, row)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return qz, nil
}

// QueryQuizzes joins the owning course so class/subject scope dimensions
// apply even though the quiz row does not carry them.
func (repo courseRepository) QueryQuizzes(ctx context.Context, scope auth.Filter) ([]course.Quiz, error) {
	conds, args := scopeWhere(scope, scopeCols{
		school:  "q.school_id",
		class:   "c.class_name",
		subject: "c.subject",
	})

	head := `SELECT ` + quizCols + ` FROM quiz q JOIN course c ON c.id = q.course_id`
	q, qargs, err := buildQuery(repo.db, head, conds, args, "ORDER BY q.created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	var rows []dbQuiz
	if err := repo.db.SelectContext(ctx, &rows, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]course.Quiz, 0, len(rows))
	for _, row := range rows {
		qz, err := repo.unpackQuiz(row)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, qz)
	}
	return quizzes, nil
}

func (repo courseRepository) GetQuiz(ctx context.Context, id string) (course.Quiz, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Quiz{}, course.ErrQuizNotFound
	}
	var row dbQuiz
	err := repo.db.GetContext(ctx, &row,
		repo.db.Rebind(`SELECT id, school_id, course_id, title, questions, created_by, created_at, updated_at FROM quiz WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Quiz{}, course.ErrQuizNotFound
		}
		return course.Quiz{}, errors.Wrap(err, "finding quiz by ID")
	}
	return repo.unpackQuiz(row)
}

func (repo courseRepository) UpdateQuiz(ctx context.Context, qz course.Quiz) (course.Quiz, error) {
	row, err := repo.packQuiz(qz)
	if err != nil {
		return course.Quiz{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE quiz SET title = :title, questions = :questions, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "updating quiz")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Quiz{}, course.ErrQuizNotFound
	}
	return qz, nil
}

func (repo courseRepository) DeleteQuizzesByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, qargs, err := buildQuery(repo.db, `DELETE FROM quiz`, []string{"id IN (?)"}, []interface{}{ids}, "")
	if err != nil {
		return 0, errors.Wrap(err, "deleting quizzes")
	}
	res, err := repo.db.ExecContext(ctx, q, qargs...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting quizzes")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting quizzes")
	}
	return int(cnt), nil
}
