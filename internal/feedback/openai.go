package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI asks an OpenAI-compatible chat completion endpoint for a short
// explanation of the graded answer.
type OpenAI struct {
	api   *openai.Client
	model string
}

// NewOpenAI creates a generator. baseURL may be empty for the public API.
func NewOpenAI(baseURL, apiKey, modelName string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		api:   openai.NewClientWithConfig(cfg),
		model: modelName,
	}
}

type llmReply struct {
	Explanation string `json:"explanation"`
}

func (g *OpenAI) Generate(ctx context.Context, in Input) (*Result, error) {
	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(in)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	var reply llmReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}
	reply.Explanation = strings.TrimSpace(reply.Explanation)
	if reply.Explanation == "" {
		return nil, errors.New("LLM returned an empty explanation")
	}

	id, label := correctFields(in.Correct)
	return &Result{
		Text: reply.Explanation,
		Payload: Payload{
			Explanation:        reply.Explanation,
			IsCorrect:          in.IsCorrect,
			Source:             SourceLLM,
			CorrectChoiceID:    id,
			CorrectChoiceLabel: label,
			Model:              g.model,
		},
	}, nil
}

const systemPrompt = `Eres un tutor de preparación para la PAES. Explica en español, en un máximo de tres oraciones, por qué la alternativa elegida es correcta o incorrecta. No reveles información que no esté en el enunciado.
Responde SOLO con un objeto JSON: {"explanation": "<texto>"}`

func buildUserPrompt(in Input) string {
	var sb strings.Builder
	if in.ReadingText != nil && *in.ReadingText != "" {
		sb.WriteString("TEXTO:\n" + *in.ReadingText + "\n\n")
	}
	sb.WriteString("PREGUNTA: " + in.Prompt + "\n")
	sb.WriteString(fmt.Sprintf("ALTERNATIVA ELEGIDA: %s. %s\n", in.Selected.Label, in.Selected.Text))
	if in.Correct != nil {
		sb.WriteString(fmt.Sprintf("ALTERNATIVA CORRECTA: %s. %s\n", in.Correct.Label, in.Correct.Text))
	}
	if in.Explanation != nil && *in.Explanation != "" {
		sb.WriteString("EXPLICACIÓN DE REFERENCIA: " + *in.Explanation + "\n")
	}
	if in.IsCorrect {
		sb.WriteString("El estudiante respondió correctamente.\n")
	} else {
		sb.WriteString("El estudiante respondió incorrectamente.\n")
	}
	return sb.String()
}
