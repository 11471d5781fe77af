// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package assist generates resource drafts for the admin panel using the
// OpenAI chat completions API.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DraftInput contains the editor's input for draft generation.
type DraftInput struct {
	Topic          string `json:"topic"`
	ResourceType   string `json:"resourceType"`
	TargetAudience string `json:"targetAudience"`
	Tone           string `json:"tone"`
	KeyPoints      string `json:"keyPoints"`
}

// Draft contains the AI-generated resource draft.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
}

// Service talks to the OpenAI API. A nil Service means drafting is
// disabled (no API key configured).
type Service struct {
	client openai.Client
	model  string
}

// New creates the assist service. Returns nil when apiKey is empty.
func New(apiKey, model string) *Service {
	if apiKey == "" {
		return nil
	}
	return &Service{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// GenerateDraft asks the model for a resource draft on the given topic.
func (s *Service) GenerateDraft(ctx context.Context, input DraftInput) (*Draft, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(input)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices returned")
	}

	return parseDraft(resp.Choices[0].Message.Content)
}

const systemPrompt = `You are a content writer for an AI consulting company. You write clear, practical articles about applied AI for business readers.

You must respond with a valid JSON object (no markdown code fences, no extra text) with exactly these fields:

{
  "title": "An engaging, specific title",
  "description": "A one-paragraph summary under 300 characters",
  "content": "Full article body in Markdown. Minimum 400 words, with ## section headings, lists where useful, and a clear introduction and conclusion.",
  "tags": ["3-6", "relevant", "lowercase", "tags"]
}

Respond ONLY with the JSON object, no other text.`

// buildUserPrompt creates the user prompt for draft generation.
func buildUserPrompt(input DraftInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write an article about: %s\n\n", input.Topic)

	if input.ResourceType != "" {
		fmt.Fprintf(&sb, "Article kind: %s\n", input.ResourceType)
	}
	if input.TargetAudience != "" {
		fmt.Fprintf(&sb, "Target audience: %s\n", input.TargetAudience)
	}
	if input.Tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", input.Tone)
	}
	if input.KeyPoints != "" {
		fmt.Fprintf(&sb, "Key points to cover:\n%s\n", input.KeyPoints)
	}

	return sb.String()
}

// parseDraft decodes the model's JSON reply, tolerating accidental
// markdown code fences around the object.
func parseDraft(raw string) (*Draft, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var draft Draft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, fmt.Errorf("parsing draft JSON: %w", err)
	}
	if draft.Title == "" || draft.Content == "" {
		return nil, fmt.Errorf("draft is missing title or content")
	}
	return &draft, nil
}
