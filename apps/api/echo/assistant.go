package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/ai"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/course"
)

type assistantApi struct {
	svc      ai.ServiceInterface
	validate *validator.Validate
}

func registerAssistantAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := assistantApi{
		svc:      opts.AssistantSvc,
		validate: opts.Validate,
	}

	ag := g.Group("/assistant", jwt)
	// chat & explanations are open to every signed-in role; quiz drafting
	// is gated the same way as quiz creation.
	ag.POST("/chat", api.chat, authorize(opts.Gate, auth.ResourceCourses, auth.ActionRead))
	ag.POST("/explain", api.explain, authorize(opts.Gate, auth.ResourceCourses, auth.ActionRead))
	ag.POST("/quiz", api.generateQuiz, authorize(opts.Gate, auth.ResourceQuizzes, auth.ActionCreate))
}

type (
	ChatRequest struct {
		History []ai.ChatMessage `json:"history" validate:"omitempty,dive"`
		Prompt  string           `json:"prompt" validate:"required"`
	}

	ChatResponse struct {
		Reply string `json:"reply"`
	}

	GenerateQuizRequest struct {
		Subject   string `json:"subject" validate:"required"`
		ClassName string `json:"class_name" validate:"required"`
		Topic     string `json:"topic" validate:"required"`
		Count     int    `json:"count" validate:"min=0,max=20"`
	}

	GenerateQuizResponse struct {
		Questions []course.QuizQuestion `json:"questions"`
	}

	ExplainRequest struct {
		Subject string `json:"subject" validate:"required"`
		Topic   string `json:"topic" validate:"required"`
	}

	ExplainResponse struct {
		Explanation string `json:"explanation"`
	}
)

func (cr *ChatRequest) Validate(validate *validator.Validate) error {
	cr.Prompt = core.CleanString(cr.Prompt)
	return validate.Struct(cr)
}

func (gr *GenerateQuizRequest) Validate(validate *validator.Validate) error {
	gr.Subject = core.CleanString(gr.Subject)
	gr.ClassName = core.CleanString(gr.ClassName)
	gr.Topic = core.CleanString(gr.Topic)
	return validate.Struct(gr)
}

func (er *ExplainRequest) Validate(validate *validator.Validate) error {
	er.Subject = core.CleanString(er.Subject)
	er.Topic = core.CleanString(er.Topic)
	return validate.Struct(er)
}

// Handlers

func (api *assistantApi) chat(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reply := api.svc.Chat(ctx.Request().Context(), data.History, data.Prompt)
	return ctx.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

func (api *assistantApi) generateQuiz(ctx echo.Context) error {
	var data GenerateQuizRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateQuizRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	questions := api.svc.GenerateQuiz(ctx.Request().Context(), data.Subject, data.ClassName, data.Topic, data.Count)
	return ctx.JSON(http.StatusOK, GenerateQuizResponse{Questions: questions})
}

func (api *assistantApi) explain(ctx echo.Context) error {
	var data ExplainRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExplainRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	explanation := api.svc.ExplainTopic(ctx.Request().Context(), data.Subject, data.Topic)
	return ctx.JSON(http.StatusOK, ExplainResponse{Explanation: explanation})
}
