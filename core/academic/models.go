package academic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sharath2004/edubridge/core"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

type (
	// Mark is a single score entry; always carries the school and class
	// it was recorded under so the scope filter has something to bite on.
	Mark struct {
		ID        string    `json:"id"`
		SchoolID  string    `json:"school_id"`
		StudentID string    `json:"student_id"`
		ClassName string    `json:"class_name"`
		Subject   string    `json:"subject"`
		Term      string    `json:"term"`
		Score     float64   `json:"score"`
		MaxScore  float64   `json:"max_score"`
		Remarks   string    `json:"remarks,omitempty"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	Attendance struct {
		ID        string    `json:"id"`
		SchoolID  string    `json:"school_id"`
		StudentID string    `json:"student_id"`
		ClassName string    `json:"class_name"`
		Date      time.Time `json:"date"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

type NewMark struct {
	StudentID string  `json:"student_id" validate:"required"`
	ClassName string  `json:"class_name" validate:"required"`
	Subject   string  `json:"subject" validate:"required"`
	Term      string  `json:"term" validate:"required"`
	Score     float64 `json:"score" validate:"min=0"`
	MaxScore  float64 `json:"max_score" validate:"required,gtefield=Score"`
	Remarks   string  `json:"remarks"`
}

func (nm *NewMark) Validate(validate *validator.Validate) error {
	nm.StudentID = core.CleanString(nm.StudentID)
	nm.ClassName = core.CleanString(nm.ClassName)
	nm.Subject = core.CleanString(nm.Subject)
	nm.Term = core.CleanString(nm.Term)
	nm.Remarks = core.CleanString(nm.Remarks)
	return validate.Struct(nm)
}

type NewAttendance struct {
	StudentID string    `json:"student_id" validate:"required"`
	ClassName string    `json:"class_name" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent late"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	na.ClassName = core.CleanString(na.ClassName)
	na.Status = core.CleanString(na.Status, true /* lower */)
	return validate.Struct(na)
}

// MarkFilter narrows a mark listing within the mandatory scope.
type MarkFilter struct {
	Term     string    `query:"term"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}

// AttendanceFilter narrows an attendance listing within the mandatory scope.
type AttendanceFilter struct {
	Status   string    `query:"status"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}
