package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/user"
)

type dbUser struct {
	ID               string         `db:"id"`
	Name             null.String    `db:"name"`
	Username         null.String    `db:"username"`
	Email            null.String    `db:"email"`
	Role             string         `db:"role"`
	SchoolID         null.String    `db:"school_id"`
	ClassName        string         `db:"class_name"`
	AssignedClasses  pq.StringArray `db:"assigned_classes"`
	AssignedSubjects pq.StringArray `db:"assigned_subjects"`
	IsActive         null.Bool      `db:"is_active"`
	PasswordHash     null.Bytes     `db:"password_hash"`
	CreatedAt        null.Time      `db:"created_at"`
	UpdatedAt        null.Time      `db:"updated_at"`
	LastLogin        null.Time      `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) pack(usr user.User) dbUser {
	u := dbUser{
		ID:               usr.ID,
		Name:             null.NewString(usr.Name, usr.Name != ""),
		Username:         null.NewString(usr.Username, usr.Username != ""),
		Email:            null.NewString(usr.Email, usr.Email != ""),
		Role:             string(usr.Role),
		SchoolID:         null.NewString(usr.SchoolID, usr.SchoolID != ""),
		ClassName:        usr.ClassName,
		AssignedClasses:  usr.AssignedClasses,
		AssignedSubjects: usr.AssignedSubjects,
		IsActive:         null.BoolFromPtr(usr.IsActive),
		PasswordHash:     null.BytesFrom(usr.PasswordHash),
		CreatedAt:        null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:        null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:        null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
	return u
}

func (repo userRepository) unpack(u dbUser) user.User {
	return user.User{
		ID:               u.ID,
		Name:             u.Name.String,
		Username:         u.Username.String,
		Email:            u.Email.String,
		Role:             auth.Role(u.Role),
		SchoolID:         u.SchoolID.String,
		ClassName:        u.ClassName,
		AssignedClasses:  u.AssignedClasses,
		AssignedSubjects: u.AssignedSubjects,
		IsActive:         u.IsActive.Ptr(),
		PasswordHash:     u.PasswordHash.Bytes,
		CreatedAt:        u.CreatedAt.Time,
		UpdatedAt:        u.UpdatedAt.Time,
		LastLogin:        u.LastLogin.Time,
	}
}

func (repo userRepository) unpackSlice(slice []dbUser) []user.User {
	users := make([]user.User, 0, len(slice))
	for _, u := range slice {
		users = append(users, repo.unpack(u))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const userCols = `id, name, username, email, role, school_id, class_name,
	assigned_classes, assigned_subjects, is_active, password_hash,
	created_at, updated_at, last_login`

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User) error {
	conds := []string{"(username = ? OR email = ?)"}
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		conds = append(conds, "id NOT IN (?)")
		args = append(args, ids)
	}

	q, qargs, err := buildQuery(repo.db, `SELECT username, email FROM "user"`, conds, args, "")
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	var matches []dbUser
	if err := repo.db.SelectContext(ctx, &matches, q, qargs...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, m := range matches {
		if username != "" && m.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && m.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	u := repo.pack(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, name, username, email, role, school_id, class_name,
			assigned_classes, assigned_subjects, is_active, password_hash,
			created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :role, :school_id, :class_name,
			:assigned_classes, :assigned_subjects, :is_active, :password_hash,
			:created_at, :updated_at, :last_login)`, u)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unpack(u), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, scope auth.Filter, ordering []core.DBOrdering) ([]user.User, error) {
	conds, args := scopeWhere(scope, scopeCols{school: "school_id", student: "id", class: "class_name"})

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			conds = append(conds, "(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)")
			val := "%" + filter.Search + "%"
			args = append(args, val, val, val)
		}
		if filter.Role != "" {
			conds = append(conds, "role = ?")
			args = append(args, filter.Role)
		}
		if filter.ClassName != "" {
			conds = append(conds, "class_name = ?")
			args = append(args, filter.ClassName)
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= ?")
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= ?")
			args = append(args, filter.CreatedTo.UTC())
		}
	}

	q, qargs, err := buildQuery(repo.db, `SELECT `+userCols+` FROM "user"`, conds, args, orderClause(ordering))
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	var users []dbUser
	if err := repo.db.SelectContext(ctx, &users, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unpackSlice(users), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var conds []string
	var args []interface{}

	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		conds, args = []string{"id = ?"}, []interface{}{filter.ID}
	} else if filter.Username != "" {
		conds, args = []string{"username = ?"}, []interface{}{filter.Username}
	} else if filter.Email != "" {
		conds, args = []string{"email = ?"}, []interface{}{filter.Email}
	} else if filter.UsernameOrEmail != nil {
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		conds, args = []string{"(username = ? OR email = ?)"}, []interface{}{uname, email}
	} else {
		return user.User{}, user.ErrNotFound
	}

	q, qargs, err := buildQuery(repo.db, `SELECT `+userCols+` FROM "user"`, conds, args, "")
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user")
	}
	var u dbUser
	if err := repo.db.GetContext(ctx, &u, q, qargs...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unpack(u), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	u := repo.pack(usr)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE "user" SET name = :name, username = :username, email = :email,
			role = :role, school_id = :school_id, class_name = :class_name,
			assigned_classes = :assigned_classes, assigned_subjects = :assigned_subjects,
			is_active = :is_active, password_hash = :password_hash,
			updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`, u)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unpack(u), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, qargs, err := buildQuery(repo.db, `DELETE FROM "user"`, []string{"id IN (?)"}, []interface{}{ids}, "")
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	res, err := repo.db.ExecContext(ctx, q, qargs...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}

func (repo userRepository) CountUsersBySchool(ctx context.Context, schoolID string, role auth.Role) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt,
		repo.db.Rebind(`SELECT COUNT(*) FROM "user" WHERE school_id = ? AND role = ?`), schoolID, string(role))
	if err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return cnt, nil
}

func (repo userRepository) TeacherAssignment(ctx context.Context, teacherID string) (auth.Assignment, error) {
	var u dbUser
	err := repo.db.GetContext(ctx, &u,
		repo.db.Rebind(`SELECT assigned_classes, assigned_subjects FROM "user" WHERE id = ?`), teacherID)
	if err != nil {
		return auth.Assignment{}, repo.trapNoRowsErr(err, "loading teacher assignment")
	}
	return auth.Assignment{Classes: u.AssignedClasses, Subjects: u.AssignedSubjects}, nil
}
