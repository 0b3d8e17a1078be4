package aisvc

import (
	"context"
	"fmt"

	"github.com/sharath2004/edubridge/core/ai"
	"github.com/sharath2004/edubridge/core/course"
)

// dummyAssistant is a deterministic stand-in for tests and local runs
// without an API key. Set failing to exercise the fallback paths.
type dummyAssistant struct {
	failing bool
}

var _ ai.Assistant = (*dummyAssistant)(nil)

func NewDummyAssistant(failing bool) ai.Assistant {
	return &dummyAssistant{failing: failing}
}

var errDummyDown = fmt.Errorf("assistant unavailable")

func (a *dummyAssistant) Chat(_ context.Context, _ []ai.ChatMessage, prompt string) (string, error) {
	if a.failing {
		return "", errDummyDown
	}
	return fmt.Sprintf("You asked: %q. Here is a practice answer.", prompt), nil
}

func (a *dummyAssistant) GenerateQuiz(_ context.Context, subject, _, topic string, n int) ([]course.QuizQuestion, error) {
	if a.failing {
		return nil, errDummyDown
	}
	questions := make([]course.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, course.QuizQuestion{
			Prompt:  fmt.Sprintf("Sample question %d on %s (%s)?", i+1, topic, subject),
			Options: []string{"First", "Second", "Third", "Fourth"},
			Answer:  i % 4,
		})
	}
	return questions, nil
}

func (a *dummyAssistant) ExplainTopic(_ context.Context, subject, topic string) (string, error) {
	if a.failing {
		return "", errDummyDown
	}
	return fmt.Sprintf("%s is a topic in %s. This is a practice explanation.", topic, subject), nil
}
