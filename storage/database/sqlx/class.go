package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
)

type dbClass struct {
	ID             string      `db:"id"`
	SchoolID       string      `db:"school_id"`
	ClassName      string      `db:"class_name"`
	Section        string      `db:"section"`
	ClassTeacherID null.String `db:"class_teacher_id"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) pack(cls class.Class) dbClass {
	return dbClass{
		ID:             cls.ID,
		SchoolID:       cls.SchoolID,
		ClassName:      cls.ClassName,
		Section:        cls.Section,
		ClassTeacherID: null.NewString(cls.ClassTeacherID, cls.ClassTeacherID != ""),
		CreatedAt:      cls.CreatedAt.UTC(),
		UpdatedAt:      cls.UpdatedAt.UTC(),
	}
}

func (repo classRepository) unpack(c dbClass) class.Class {
	return class.Class{
		ID:             c.ID,
		SchoolID:       c.SchoolID,
		ClassName:      c.ClassName,
		Section:        c.Section,
		ClassTeacherID: c.ClassTeacherID.String,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to class.ErrNotFound
func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const classCols = `id, school_id, class_name, section, class_teacher_id, created_at, updated_at`

func (repo classRepository) CheckNameUniqueness(ctx context.Context, schoolID, className string, excluded ...class.Class) error {
	conds := []string{"school_id = ?", "class_name = ?"}
	args := []interface{}{schoolID, className}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, c := range excluded {
			ids = append(ids, c.ID)
		}
		conds = append(conds, "id NOT IN (?)")
		args = append(args, ids)
	}

	q, qargs, err := buildQuery(repo.db, `SELECT EXISTS (SELECT 1 FROM class`, conds, args, ")")
	if err != nil {
		return errors.Wrap(err, "checking class name uniqueness")
	}
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, q, qargs...); err != nil {
		return errors.Wrap(err, "checking class name uniqueness")
	}
	if exists {
		return class.ErrClassExists
	}
	return nil
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	c := repo.pack(cls)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO class (id, school_id, class_name, section, class_teacher_id, created_at, updated_at)
		VALUES (:id, :school_id, :class_name, :section, :class_teacher_id, :created_at, :updated_at)`, c)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return repo.unpack(c), nil
}

func (repo classRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, scope auth.Filter) ([]class.Class, error) {
	conds, args := scopeWhere(scope, scopeCols{school: "school_id", class: "class_name"})

	if filter != nil && filter.Search != "" {
		conds = append(conds, "(class_name ILIKE ? OR section ILIKE ?)")
		val := "%" + filter.Search + "%"
		args = append(args, val, val)
	}

	q, qargs, err := buildQuery(repo.db, `SELECT `+classCols+` FROM class`, conds, args, "ORDER BY class_name ASC")
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	var rows []dbClass
	if err := repo.db.SelectContext(ctx, &rows, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, c := range rows {
		classes = append(classes, repo.unpack(c))
	}
	return classes, nil
}

func (repo classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return class.Class{}, class.ErrNotFound
	}
	var c dbClass
	err := repo.db.GetContext(ctx, &c,
		repo.db.Rebind(`SELECT `+classCols+` FROM class WHERE id = ?`), id)
	if err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "finding class by ID")
	}
	return repo.unpack(c), nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	c := repo.pack(cls)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE class SET class_name = :class_name, section = :section,
			class_teacher_id = :class_teacher_id, updated_at = :updated_at
		WHERE id = :id`, c)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return repo.unpack(c), nil
}

func (repo classRepository) DeleteClassesByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, qargs, err := buildQuery(repo.db, `DELETE FROM class`, []string{"id IN (?)"}, []interface{}{ids}, "")
	if err != nil {
		return 0, errors.Wrap(err, "deleting classes")
	}
	res, err := repo.db.ExecContext(ctx, q, qargs...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting classes")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting classes")
	}
	return int(cnt), nil
}
