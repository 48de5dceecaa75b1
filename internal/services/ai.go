package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// FindingExtractor turns free-form report text into draft findings.
type FindingExtractor interface {
	ExtractFindings(ctx context.Context, text string) ([]GeneratedFinding, error)
}

type AIService struct {
	client *openai.Client
	model  string
}

// GeneratedFinding is a draft vulnerability ticket suggested by the model.
type GeneratedFinding struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    float64 `json:"severity"`
	Target      string  `json:"target,omitempty"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

const findingPrompt = `You are a security triage assistant. Extract every distinct vulnerability
finding from the report below.

Report:
%s

Respond with a JSON array only, no prose:
[
  {
    "title": "short vulnerability name",
    "description": "one or two sentences describing impact and location",
    "severity": 0.0,
    "target": "affected host, URL or component, or empty string"
  }
]

Rules:
- severity is a CVSS-like score between 0 and 10
- return [] when the report contains no findings`

// ExtractFindings asks the model for findings in the report text
func (s *AIService) ExtractFindings(ctx context.Context, text string) ([]GeneratedFinding, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(findingPrompt, text),
				},
			},
			Temperature: 0.2,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseFindings(resp.Choices[0].Message.Content)
}

// parseFindings decodes the model reply, tolerating a markdown code fence.
func parseFindings(content string) ([]GeneratedFinding, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var findings []GeneratedFinding
	if err := json.Unmarshal([]byte(trimmed), &findings); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return findings, nil
}
