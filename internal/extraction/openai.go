// internal/extraction/openai.go
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const extractionSystemPrompt = "You are an expert at analyzing technical documents and extracting structured " +
	"information for patent disclosures. Always respond with valid JSON only."

const extractionPromptTemplate = `Analyze this document and extract patent disclosure information.
Return ONLY a valid JSON object with these fields:
- title: A concise title for the invention (string)
- description: What the invention is, explained in plain terms (string, 2-4 paragraphs)
- key_differences: What makes it different or novel compared to existing approaches (string, bullet points or paragraphs)
- inventors: Array of objects with "name" and "email" fields for each inventor/author mentioned

If you cannot find inventors/authors, return an empty array for inventors.
If you cannot determine a field, make your best inference from the document content.

Document text:
%s

Return ONLY the JSON object, no other text or markdown formatting.`

// Very long documents are truncated to stay inside the model's context.
const maxPromptChars = 50000

// OpenAISegmenter asks a chat model to do the field segmentation. It is the
// higher-quality strategy and is wired in whenever an API key is configured;
// the heuristic segmenter remains the fallback.
type OpenAISegmenter struct {
	client *openai.Client
	model  string
}

func NewOpenAISegmenter(apiKey, model string) *OpenAISegmenter {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAISegmenter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (s *OpenAISegmenter) Segment(ctx context.Context, text string) (CandidateRecord, error) {
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars] + "\n\n[Document truncated...]"
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(extractionPromptTemplate, text)},
		},
		Temperature: 0.1,
		MaxTokens:   4000,
	})
	if err != nil {
		return CandidateRecord{}, fmt.Errorf("extraction model call failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return CandidateRecord{}, fmt.Errorf("empty response from extraction model")
	}

	return parseModelResponse(resp.Choices[0].Message.Content)
}

// parseModelResponse tolerates the model's habits: markdown fences around
// the JSON, list values where strings were asked for, a missing inventors
// key.
func parseModelResponse(content string) (CandidateRecord, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw struct {
		Title          json.RawMessage     `json:"title"`
		Description    json.RawMessage     `json:"description"`
		KeyDifferences json.RawMessage     `json:"key_differences"`
		Inventors      []CandidateInventor `json:"inventors"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return CandidateRecord{}, fmt.Errorf("invalid JSON from extraction model: %w", err)
	}

	record := CandidateRecord{
		Title:          coerceToString(raw.Title),
		Description:    coerceToString(raw.Description),
		KeyDifferences: coerceToString(raw.KeyDifferences),
		Inventors:      raw.Inventors,
	}
	if record.Inventors == nil {
		record.Inventors = []CandidateInventor{}
	}

	return record, nil
}

func coerceToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		bullets := make([]string, 0, len(list))
		for _, item := range list {
			bullets = append(bullets, "• "+item)
		}
		return strings.Join(bullets, "\n")
	}

	return ""
}
