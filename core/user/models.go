package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
)

type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Role             auth.Role `json:"role"`
	SchoolID         string    `json:"school_id,omitempty"`
	ClassName        string    `json:"class_name,omitempty"` // students only
	AssignedClasses  []string  `json:"assigned_classes,omitempty"`
	AssignedSubjects []string  `json:"assigned_subjects,omitempty"`
	IsActive         *bool     `json:"is_active"`
	PasswordHash     []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
	LastLogin        time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) { u.IsActive = &active }

func (u *User) Active() bool { return u.IsActive != nil && *u.IsActive }

func (u *User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Role: u.Role, SchoolID: u.SchoolID}
}

func (u *User) IsTeacher() bool { return u.Role == auth.RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == auth.RoleStudent }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string   `json:"role" validate:"required,knownrole"`
	SchoolID        string   `json:"school_id" validate:"required_unless=Role super-admin"`
	ClassName       string   `json:"class_name"`
	AssignedClasses []string `json:"assigned_classes"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.ClassName = core.CleanString(nu.ClassName)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	ClassName       *string  `json:"class_name"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc ServiceInterface) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, origUsr)
}

// UpdateAssignment sets a teacher's assigned classes and subjects.
type UpdateAssignment struct {
	AssignedClasses  []string `json:"assigned_classes" validate:"required"`
	AssignedSubjects []string `json:"assigned_subjects"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.AssignedClasses = core.CleanStrings(ua.AssignedClasses)
	ua.AssignedSubjects = core.CleanStrings(ua.AssignedSubjects)
	return validate.Struct(ua)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// QueryFilter is the caller-requested narrowing of a user query; the
// mandatory tenant restriction travels separately as an auth.Filter.
type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	ClassName   string    `query:"class_name"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.ClassName == "" &&
		qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.ClassName = core.CleanString(qf.ClassName)
}

// GetFilter selects a single user by one of its unique attributes.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail []string
}
