package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sharath2004/edubridge/core"
)

// Class belongs to exactly one school.
type Class struct {
	ID             string    `json:"id"`
	SchoolID       string    `json:"school_id"`
	ClassName      string    `json:"class_name"` // eg. "10-A"
	Section        string    `json:"section,omitempty"`
	ClassTeacherID string    `json:"class_teacher_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

type NewClass struct {
	ClassName string `json:"class_name" validate:"required"`
	Section   string `json:"section"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.ClassName = core.CleanString(nc.ClassName)
	nc.Section = core.CleanString(nc.Section)
	return validate.Struct(nc)
}

type UpdateClass struct {
	ClassName string `json:"class_name"`
	Section   string `json:"section"`
}

func (uc *UpdateClass) Validate(orig Class, validate *validator.Validate) error {
	name := core.CleanString(uc.ClassName)
	if name != "" {
		uc.ClassName = name
	} else {
		uc.ClassName = orig.ClassName
	}
	uc.Section = core.CleanString(uc.Section)
	return validate.Struct(uc)
}

// AssignTeacher names the teacher who owns a class.
type AssignTeacher struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}

func (at *AssignTeacher) Validate(validate *validator.Validate) error {
	at.TeacherID = core.CleanString(at.TeacherID)
	return validate.Struct(at)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
