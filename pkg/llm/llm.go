// Package llm wraps the Gemini API behind the narrow contract the
// scheduler needs: text in, JSON text out, empty string on any failure.
package llm

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

//go:embed system-prompt.txt
var systemPrompt string

// responseSchema constrains the model to the entries document shape.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"entries": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"surface":  {Type: genai.TypeString},
					"base":     {Type: genai.TypeString},
					"variants": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"notes":    {Type: genai.TypeString},
				},
				Required: []string{"surface", "base", "variants"},
			},
		},
	},
	Required: []string{"entries"},
}

// Client calls Gemini with a fixed system instruction and a strict
// JSON response schema. Safe for concurrent use; the scheduler's
// admission gate is the only coordination it needs.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client, model: model, logger: logger}, nil
}

// GenerateResponse sends input to the model and returns its text
// response. Returns an empty string on timeout, transport error or a
// response with no text candidate; it never fails loudly, callers
// treat "" as a soft batch failure.
func (c *Client) GenerateResponse(ctx context.Context, input string, timeout time.Duration) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		// Allow larger JSON responses to avoid truncation
		MaxOutputTokens:   30000,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(input), config)
	if err != nil {
		c.logger.Error("LLM call failed", "model", c.model, "timeout", timeout, "error", err)
		return ""
	}

	return resp.Text()
}
