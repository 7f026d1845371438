// Package llm asks a Gemini model for word definitions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Prompt builds the definition prompt for word as used in passage.
func Prompt(word, passage string) string {
	return fmt.Sprintf("Provide a concise definition for the word '%s' in the following context:\n\n    %s\n\n    Definition:", word, passage)
}

// generator is the part of *genai.GenerativeModel the definer uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini defines words with a Gemini model.
type Gemini struct {
	Model  string
	client *genai.Client
	gen    generator
}

// NewGemini creates a definer for the named model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{
		Model:  model,
		client: client,
		gen:    client.GenerativeModel(model),
	}, nil
}

// Close releases the client connection.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Define returns the model's answer for word as used in passage. The answer is
// usually Markdown.
func (g *Gemini) Define(ctx context.Context, word, passage string) (string, error) {
	resp, err := g.gen.GenerateContent(ctx, genai.Text(Prompt(word, passage)))
	if err != nil {
		return "", fmt.Errorf("failed to generate definition: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}
