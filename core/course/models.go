package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sharath2004/edubridge/core"
)

type (
	Course struct {
		ID          string    `json:"id"`
		SchoolID    string    `json:"school_id"`
		Title       string    `json:"title"`
		Subject     string    `json:"subject"`
		ClassName   string    `json:"class_name"`
		Description string    `json:"description,omitempty"`
		CreatedBy   string    `json:"created_by"`
		CreatedAt   time.Time `json:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at"` // UTC
	}

	QuizQuestion struct {
		Prompt  string   `json:"prompt" validate:"required"`
		Options []string `json:"options" validate:"required,len=4,dive,required"`
		Answer  int      `json:"answer" validate:"min=0,max=3"`
	}

	Quiz struct {
		ID        string         `json:"id"`
		SchoolID  string         `json:"school_id"`
		CourseID  string         `json:"course_id"`
		Title     string         `json:"title"`
		Questions []QuizQuestion `json:"questions"`
		CreatedBy string         `json:"created_by"`
		CreatedAt time.Time      `json:"created_at"` // UTC
		UpdatedAt time.Time      `json:"updated_at"` // UTC
	}
)

type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	ClassName   string `json:"class_name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Subject = core.CleanString(nc.Subject)
	nc.ClassName = core.CleanString(nc.ClassName)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type UpdateCourse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (uc *UpdateCourse) Validate(orig Course, validate *validator.Validate) error {
	title := core.CleanString(uc.Title)
	if title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

type NewQuiz struct {
	CourseID  string         `json:"course_id" validate:"required"`
	Title     string         `json:"title" validate:"required"`
	Questions []QuizQuestion `json:"questions" validate:"required,min=1,dive"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.CourseID = core.CleanString(nq.CourseID)
	nq.Title = core.CleanString(nq.Title)
	return validate.Struct(nq)
}

type UpdateQuiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions" validate:"omitempty,min=1,dive"`
}

func (uq *UpdateQuiz) Validate(orig Quiz, validate *validator.Validate) error {
	title := core.CleanString(uq.Title)
	if title != "" {
		uq.Title = title
	} else {
		uq.Title = orig.Title
	}
	return validate.Struct(uq)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
