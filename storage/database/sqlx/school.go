package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/school"
)

type dbSchool struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	Address     string    `db:"address"`
	IsActive    bool      `db:"is_active"`
	MaxStudents int       `db:"max_students"`
	MaxTeachers int       `db:"max_teachers"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) pack(sch school.School) dbSchool {
	return dbSchool{
		ID:          sch.ID,
		Name:        sch.Name,
		Code:        sch.Code,
		Address:     sch.Address,
		IsActive:    sch.IsActive,
		MaxStudents: sch.Subscription.MaxStudents,
		MaxTeachers: sch.Subscription.MaxTeachers,
		CreatedAt:   sch.CreatedAt.UTC(),
		UpdatedAt:   sch.UpdatedAt.UTC(),
	}
}

func (repo schoolRepository) unpack(s dbSchool) school.School {
	return school.School{
		ID:       s.ID,
		Name:     s.Name,
		Code:     s.Code,
		Address:  s.Address,
		IsActive: s.IsActive,
		Subscription: school.Subscription{
			MaxStudents: s.MaxStudents,
			MaxTeachers: s.MaxTeachers,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to school.ErrNotFound
func (repo schoolRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return school.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const schoolCols = `id, name, code, address, is_active, max_students, max_teachers, created_at, updated_at`

func (repo schoolRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		repo.db.Rebind(`SELECT EXISTS (SELECT 1 FROM school WHERE code = ?)`), code)
	if err != nil {
		return errors.Wrap(err, "checking school code uniqueness")
	}
	if exists {
		return school.ErrCodeExists
	}
	return nil
}

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = uuid.New().String()
	s := repo.pack(sch)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO school (id, name, code, address, is_active, max_students, max_teachers, created_at, updated_at)
		VALUES (:id, :name, :code, :address, :is_active, :max_students, :max_teachers, :created_at, :updated_at)`, s)
	if err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return repo.unpack(s), nil
}

func (repo schoolRepository) QuerySchools(ctx context.Context, filter *school.QueryFilter, scope auth.Filter) ([]school.School, error) {
	conds, args := scopeWhere(scope, scopeCols{school: "id"})

	if filter != nil {
		if filter.Search != "" {
			conds = append(conds, "(name ILIKE ? OR code ILIKE ?)")
			val := "%" + filter.Search + "%"
			args = append(args, val, val)
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
	}

	q, qargs, err := buildQuery(repo.db, `SELECT `+schoolCols+` FROM school`, conds, args, "ORDER BY name ASC")
	if err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	var rows []dbSchool
	if err := repo.db.SelectContext(ctx, &rows, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, 0, len(rows))
	for _, s := range rows {
		schools = append(schools, repo.unpack(s))
	}
	return schools, nil
}

func (repo schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	if _, err := uuid.Parse(id); err != nil {
		return school.School{}, school.ErrNotFound
	}
	var s dbSchool
	err := repo.db.GetContext(ctx, &s,
		repo.db.Rebind(`SELECT `+schoolCols+` FROM school WHERE id = ?`), id)
	if err != nil {
		return school.School{}, repo.trapNoRowsErr(err, "finding school by ID")
	}
	return repo.unpack(s), nil
}

func (repo schoolRepository) GetSchoolByCode(ctx context.Context, code string) (school.School, error) {
	var s dbSchool
	err := repo.db.GetContext(ctx, &s,
		repo.db.Rebind(`SELECT `+schoolCols+` FROM school WHERE code = ?`), code)
	if err != nil {
		return school.School{}, repo.trapNoRowsErr(err, "finding school by code")
	}
	return repo.unpack(s), nil
}

func (repo schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	s := repo.pack(sch)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE school SET name = :name, code = :code, address = :address,
			is_active = :is_active, max_students = :max_students,
			max_teachers = :max_teachers, updated_at = :updated_at
		WHERE id = :id`, s)
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return school.School{}, school.ErrNotFound
	}
	return repo.unpack(s), nil
}

func (repo schoolRepository) DeleteSchoolsByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, qargs, err := buildQuery(repo.db, `DELETE FROM school`, []string{"id IN (?)"}, []interface{}{ids}, "")
	if err != nil {
		return 0, errors.Wrap(err, "deleting schools")
	}
	res, err := repo.db.ExecContext(ctx, q, qargs...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting schools")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting schools")
	}
	return int(cnt), nil
}

func (repo schoolRepository) CountClasses(ctx context.Context, schoolID string) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt,
		repo.db.Rebind(`SELECT COUNT(*) FROM class WHERE school_id = ?`), schoolID)
	if err != nil {
		return 0, errors.Wrap(err, "counting classes")
	}
	return cnt, nil
}
