package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sharath2004/edubridge/core"
)

type (
	// Subscription caps how many students/teachers a school may enroll.
	// Zero means unlimited.
	Subscription struct {
		MaxStudents int `json:"max_students"`
		MaxTeachers int `json:"max_teachers"`
	}

	School struct {
		ID           string       `json:"id"`
		Name         string       `json:"name"`
		Code         string       `json:"code"` // unique registration code
		Address      string       `json:"address,omitempty"`
		IsActive     bool         `json:"is_active"`
		Subscription Subscription `json:"subscription"`
		CreatedAt    time.Time    `json:"created_at"` // UTC
		UpdatedAt    time.Time    `json:"updated_at"` // UTC
	}

	// Stats is recomputed from the user/class tables on every read; no
	// incrementally-maintained counters exist to drift.
	Stats struct {
		TotalStudents int `json:"total_students"`
		TotalTeachers int `json:"total_teachers"`
		TotalClasses  int `json:"total_classes"`
	}
)

// NewSchool is the public registration payload: the school plus its
// principal's account details. The school and principal start inactive
// until a super-admin approves the registration.
type NewSchool struct {
	Name    string `json:"name" validate:"required"`
	Code    string `json:"code" validate:"required,min=3,schoolcode"`
	Address string `json:"address"`

	PrincipalName     string `json:"principal_name" validate:"required"`
	PrincipalEmail    string `json:"principal_email" validate:"required,email"`
	PrincipalPassword string `json:"principal_password" validate:"required"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, false)
	ns.Address = core.CleanString(ns.Address)
	ns.PrincipalName = core.CleanString(ns.PrincipalName)
	ns.PrincipalEmail = core.CleanString(ns.PrincipalEmail, true /* lower */)
	return validate.Struct(ns)
}

// UpdateSchool defines what a super-admin may modify on a school.
type UpdateSchool struct {
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	Subscription *Subscription `json:"subscription"`
}

func (us *UpdateSchool) Validate(orig School, validate *validator.Validate) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	addr := core.CleanString(us.Address)
	if addr != "" {
		us.Address = addr
	} else {
		us.Address = orig.Address
	}
	return validate.Struct(us)
}

// QueryFilter narrows a school listing (super-admin dashboards).
type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
