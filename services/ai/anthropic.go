package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	pkgerrors "github.com/pkg/errors"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/ai"
	"github.com/sharath2004/edubridge/core/course"
)

const (
	maxTokens = 2048

	chatSystemPrompt = "You are a friendly school tutor. Answer clearly and at a level " +
		"appropriate for school students. Keep answers short and concrete."

	quizSystemPrompt = "You generate multiple-choice quizzes for school classes. " +
		"Respond with a JSON array only, no prose. Each element: " +
		`{"prompt": string, "options": [4 strings], "answer": index 0-3}.`

	explainSystemPrompt = "You explain school topics to students. Use plain language " +
		"and a short worked example where it helps."
)

type anthropicAssistant struct {
	client anthropic.Client
	model  anthropic.Model
}

var _ ai.Assistant = (*anthropicAssistant)(nil)

func NewAnthropicAssistant(conf *core.Config) (ai.Assistant, error) {
	if conf.AnthropicAPIKey == "" {
		return nil, pkgerrors.New("anthropic API key is required")
	}
	return &anthropicAssistant{
		client: anthropic.NewClient(option.WithAPIKey(conf.AnthropicAPIKey)),
		model:  anthropic.Model(conf.AIModel),
	}, nil
}

func (a *anthropicAssistant) Chat(ctx context.Context, history []ai.ChatMessage, prompt string) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		switch msg.Role {
		case ai.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))
	return a.complete(ctx, chatSystemPrompt, messages)
}

func (a *anthropicAssistant) GenerateQuiz(ctx context.Context, subject, className, topic string, n int) ([]course.QuizQuestion, error) {
	prompt := fmt.Sprintf("Generate %d questions on %q for the %s class %s.", n, topic, subject, className)
	text, err := a.complete(ctx, quizSystemPrompt, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	})
	if err != nil {
		return nil, err
	}

	var questions []course.QuizQuestion
	if err := json.Unmarshal([]byte(extractJSONArray(text)), &questions); err != nil {
		return nil, pkgerrors.Wrap(err, "parsing generated quiz")
	}
	for i, q := range questions {
		if q.Prompt == "" || len(q.Options) != 4 || q.Answer < 0 || q.Answer > 3 {
			return nil, pkgerrors.Errorf("generated question %d is malformed", i)
		}
	}
	return questions, nil
}

func (a *anthropicAssistant) ExplainTopic(ctx context.Context, subject, topic string) (string, error) {
	prompt := fmt.Sprintf("Explain %q (%s).", topic, subject)
	return a.complete(ctx, explainSystemPrompt, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	})
}

func (a *anthropicAssistant) complete(ctx context.Context, system string, messages []anthropic.MessageParam) (string, error) {
	res, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Type: "text", Text: system}},
		Messages:  messages,
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "anthropic API call")
	}

	var sb strings.Builder
	for _, block := range res.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", pkgerrors.New("empty model response")
	}
	return sb.String(), nil
}

// extractJSONArray strips any prose the model wrapped around the array.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
