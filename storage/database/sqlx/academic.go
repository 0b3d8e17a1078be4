package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/auth"
)

type dbMark struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	StudentID string    `db:"student_id"`
	ClassName string    `db:"class_name"`
	Subject   string    `db:"subject"`
	Term      string    `db:"term"`
	Score     float64   `db:"score"`
	MaxScore  float64   `db:"max_score"`
	Remarks   string    `db:"remarks"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type dbAttendance struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	StudentID string    `db:"student_id"`
	ClassName string    `db:"class_name"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo academicRepository) packMark(m academic.Mark) dbMark {
	return dbMark{
		ID:        m.ID,
		SchoolID:  m.SchoolID,
		StudentID: m.StudentID,
		ClassName: m.ClassName,
		Subject:   m.Subject,
		Term:      m.Term,
		Score:     m.Score,
		MaxScore:  m.MaxScore,
		Remarks:   m.Remarks,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func (repo academicRepository) unpackMark(m dbMark) academic.Mark {
	return academic.Mark(m)
}

const markCols = `id, school_id, student_id, class_name, subject, term, score, max_score, remarks, created_at, updated_at`

func (repo academicRepository) CreateMark(ctx context.Context, m academic.Mark) (academic.Mark, error) {
	m.ID = uuid.New().String()
	row := repo.packMark(m)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO mark (id, school_id, student_id, class_name, subject, term, score, max_score, remarks, created_at, updated_at)
		VALUES (:id, :school_id, :student_id, :class_name, :subject, :term, :score, :max_score, :remarks, :created_at, :updated_at)`, row)
	if err != nil {
		return academic.Mark{}, errors.Wrap(err, "inserting mark")
	}
	return repo.unpackMark(row), nil
}

func (repo academicRepository) QueryMarks(ctx context.Context, filter *academic.MarkFilter, scope auth.Filter) ([]academic.Mark, error) {
	conds, args := scopeWhere(scope, scopeCols{
		school:  "school_id",
		student: "student_id",
		class:   "class_name",
		subject: "subject",
	})

	if filter != nil {
		if filter.Term != "" {
			conds = append(conds, "term = ?")
			args = append(args, filter.Term)
		}
		if !filter.DateFrom.IsZero() {
			conds = append(conds, "created_at >= ?")
			args = append(args, filter.DateFrom.UTC())
		}
		if !filter.DateTo.IsZero() {
			conds = append(conds, "created_at <= ?")
			args = append(args, filter.DateTo.UTC())
		}
	}

	q, qargs, err := buildQuery(repo.db, `SELECT `+markCols+` FROM mark`, conds, args, "ORDER BY created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}
	var rows []dbMark
	if err := repo.db.SelectContext(ctx, &rows, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}
	marks := make([]academic.Mark, 0, len(rows))
	for _, m := range rows {
		marks = append(marks, repo.unpackMark(m))
	}
	return marks, nil
}

func (repo academicRepository) GetMark(ctx context.Context, id string) (academic.Mark, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.Mark{}, academic.ErrMarkNotFound
	}
	var m dbMark
	err := repo.db.GetContext(ctx, &m,
		repo.db.Rebind(`SELECT `+markCols+` FROM mark WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.Mark{}, academic.ErrMarkNotFound
		}
		return academic.Mark{}, errors.Wrap(err, "finding mark by ID")
	}
	return repo.unpackMark(m), nil
}

func (repo academicRepository) UpdateMark(ctx context.Context, m academic.Mark) (academic.Mark, error) {
	row := repo.packMark(m)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE mark SET student_id = :student_id, class_name = :class_name,
			subject = :subject, term = :term, score = :score,
			max_score = :max_score, remarks = :remarks, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return academic.Mark{}, errors.Wrap(err, "updating mark")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.Mark{}, academic.ErrMarkNotFound
	}
	return repo.unpackMark(row), nil
}

func (repo academicRepository) DeleteMarksByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, qargs, err := buildQuery(repo.db, `DELETE FROM mark`, []string{"id IN (?)"}, []interface{}{ids}, "")
	if err != nil {
		return 0, errors.Wrap(err, "deleting marks")
	}
	res, err := repo.db.ExecContext(ctx, q, qargs...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting marks")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting marks")
	}
	return int(cnt), nil
}

const attendanceCols = `id, school_id, student_id, class_name, date, status, created_at`

func (repo academicRepository) CreateAttendance(ctx context.Context, a academic.Attendance) (academic.Attendance, error) {
	a.ID = uuid.New().String()
	row := dbAttendance{
		ID:        a.ID,
		SchoolID:  a.SchoolID,
		StudentID: a.StudentID,
		ClassName: a.ClassName,
		Date:      a.Date.UTC(),
		Status:    a.Status,
		CreatedAt: a.CreatedAt.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance (id, school_id, student_id, class_name, date, status, created_at)
		VALUES (:id, :school_id, :student_id, :class_name, :date, :status, :created_at)`, row)
	if err != nil {
		return academic.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return academic.Attendance(row), nil
}

func (repo academicRepository) QueryAttendance(ctx context.Context, filter *academic.AttendanceFilter, scope auth.Filter) ([]academic.Attendance, error) {
	conds, args := scopeWhere(scope, scopeCols{
		school:  "school_id",
		student: "student_id",
		class:   "class_name",
	})

	if filter != nil {
		if filter.Status != "" {
			conds = append(conds, "status = ?")
			args = append(args, filter.Status)
		}
		if !filter.DateFrom.IsZero() {
			conds = append(conds, "date >= ?")
			args = append(args, filter.DateFrom.UTC())
		}
		if !filter.DateTo.IsZero() {
			conds = append(conds, "date <= ?")
			args = append(args, filter.DateTo.UTC())
		}
	}

	q, qargs, err := buildQuery(repo.db, `SELECT `+attendanceCols+` FROM attendance`, conds, args, "ORDER BY date DESC")
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	var rows []dbAttendance
	if err := repo.db.SelectContext(ctx, &rows, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	records := make([]academic.Attendance, 0, len(rows))
	for _, a := range rows {
		records = append(records, academic.Attendance(a))
	}
	return records, nil
}
