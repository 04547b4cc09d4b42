package classifier

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Gemini classifies PDFs with the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini classifier.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Classify sends the prompt plus the PDF as inline data and returns the
// model's raw text response.
func (g *Gemini) Classify(ctx context.Context, pdf []byte, categories []string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(BuildPrompt(categories)),
		genai.NewPartFromBytes(pdf, "application/pdf"),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	return text, nil
}

// BuildPrompt renders the categorization prompt for a sanitized
// category list.
func BuildPrompt(categories []string) string {
	return fmt.Sprintf(
		"Given the content of a PDF document, categorize it into one of the following categories: %s. Please respond with only the category name.",
		strings.Join(categories, ", "),
	)
}
