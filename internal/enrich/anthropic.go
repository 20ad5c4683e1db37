// Package enrich annotates new matches with a short model-generated fit
// summary for the notification digest.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"jobmate/alert-service/internal/model"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 256

	systemPrompt = "You are a job-search assistant. Given a job listing and a candidate's skills, " +
		"reply with a single short paragraph (max 60 words) on how well the listing fits the candidate. " +
		"Plain text only."
)

// AnthropicEnricher produces fit summaries via the Anthropic API.
type AnthropicEnricher struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	skills    []string
}

// NewAnthropicEnricher builds an enricher for the given API key and the
// operator's skill list. modelName may be empty to use the default.
func NewAnthropicEnricher(apiKey, modelName string, skills []string) *AnthropicEnricher {
	if modelName == "" {
		modelName = defaultModel
	}
	return &AnthropicEnricher{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(modelName),
		maxTokens: defaultMaxTokens,
		skills:    skills,
	}
}

// Annotate returns a short fit summary for one listing. Callers treat an
// error as a degraded (unannotated) listing, never a cycle failure.
func (e *AnthropicEnricher) Annotate(ctx context.Context, job model.JobRecord) (string, error) {
	prompt := fmt.Sprintf(
		"Candidate skills: %s\n\nListing:\nTitle: %s\nEmployer: %s\nLocation: %s\nRequired skills: %s\nDescription: %s",
		strings.Join(e.skills, ", "),
		job.Title, job.EmployerName, job.Location(),
		strings.Join(job.RequiredSkills, ", "),
		truncate(job.Description, 2000),
	)

	params := anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("empty enrichment response")
	}
	return strings.TrimSpace(out.String()), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
