package ai

import (
	"context"
	"fmt"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/course"
)

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type (
	ChatMessage struct {
		Role    string `json:"role" validate:"required,oneof=user assistant"`
		Content string `json:"content" validate:"required"`
	}

	// Assistant is the model-backed brain. Implementations live under
	// services/ai; the core only sees this interface.
	Assistant interface {
		Chat(ctx context.Context, history []ChatMessage, prompt string) (string, error)
		GenerateQuiz(ctx context.Context, subject, className, topic string, n int) ([]course.QuizQuestion, error)
		ExplainTopic(ctx context.Context, subject, topic string) (string, error)
	}

	ServiceInterface interface {
		Chat(ctx context.Context, history []ChatMessage, prompt string) string
		GenerateQuiz(ctx context.Context, subject, className, topic string, n int) []course.QuizQuestion
		ExplainTopic(ctx context.Context, subject, topic string) string
	}

	service struct {
		assistant Assistant
		logger    core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(assistant Assistant, logger core.Logger) ServiceInterface {
	return &service{assistant: assistant, logger: logger}
}

// Chat never fails the request; a provider error degrades to a canned reply.
func (svc *service) Chat(ctx context.Context, history []ChatMessage, prompt string) string {
	reply, err := svc.assistant.Chat(ctx, history, prompt)
	if err != nil {
		svc.logger.Error("assistant chat failed", err)
		return FallbackChatReply
	}
	return reply
}

func (svc *service) GenerateQuiz(ctx context.Context, subject, className, topic string, n int) []course.QuizQuestion {
	if n <= 0 {
		n = defaultQuizSize
	}
	questions, err := svc.assistant.GenerateQuiz(ctx, subject, className, topic, n)
	if err != nil || len(questions) == 0 {
		if err != nil {
			svc.logger.Error("assistant quiz generation failed", err)
		}
		return fallbackQuiz(subject, topic, n)
	}
	return questions
}

func (svc *service) ExplainTopic(ctx context.Context, subject, topic string) string {
	explanation, err := svc.assistant.ExplainTopic(ctx, subject, topic)
	if err != nil {
		svc.logger.Error("assistant explanation failed", err)
		return fmt.Sprintf(fallbackExplanationFmt, topic, subject)
	}
	return explanation
}

const (
	defaultQuizSize = 5

	FallbackChatReply = "I'm having trouble reaching the tutoring service right now. " +
		"Please try again in a moment, or ask your teacher for help."

	fallbackExplanationFmt = "An explanation of %q (%s) is not available right now. " +
		"Please try again later or check your course material."
)

// fallbackQuiz is served when the provider is down so the quiz flow
// stays usable; teachers are expected to review questions before publishing.
func fallbackQuiz(subject, topic string, n int) []course.QuizQuestion {
	questions := make([]course.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, course.QuizQuestion{
			Prompt: fmt.Sprintf("Placeholder question %d on %s (%s). Replace before publishing.", i+1, topic, subject),
			Options: []string{
				"Option A",
				"Option B",
				"Option C",
				"Option D",
			},
			Answer: 0,
		})
	}
	return questions
}
