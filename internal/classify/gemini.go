package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/news-archiver/internal/types"
)

// geminiModel is the model used for title classification; a lightweight
// tier is enough for a single-label task.
const geminiModel = "gemini-2.0-flash-lite"

// Gemini classifies titles with the Gemini API.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini-backed classifier.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &Error{Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &Error{Message: "failed to create Gemini client", Cause: err}
	}
	return &Gemini{client: client}, nil
}

// Classify asks the model for a single category label.
func (g *Gemini) Classify(ctx context.Context, title string) (types.Category, error) {
	model := g.client.GenerativeModel(geminiModel)
	model.SetTemperature(0.1) // Low temperature for consistent output

	prompt := buildPrompt(title)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return types.CategoryGeneral, &Error{Message: "failed to generate content", Cause: err}
	}

	text, err := extractText(resp)
	if err != nil {
		return types.CategoryGeneral, err
	}
	return parseCategory(text)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func buildPrompt(title string) string {
	categories := make([]string, 0, len(types.KnownCategories()))
	for _, c := range types.KnownCategories() {
		categories = append(categories, string(c))
	}
	return fmt.Sprintf(
		"Classify the following news article title into exactly one of these categories: %s.\n"+
			"Respond with only the category name, nothing else.\n\nTitle: %s",
		strings.Join(categories, ", "), title)
}

// extractText pulls the text parts out of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &Error{Message: "empty response from model"}
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// parseCategory maps the model's response onto a known category. Responses
// are cleaned of markdown fences and matched case-insensitively.
func parseCategory(response string) (types.Category, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))

	for _, c := range types.KnownCategories() {
		if cleaned == string(c) {
			return c, nil
		}
	}
	return types.CategoryGeneral, &Error{Message: fmt.Sprintf("unrecognized category %q", cleaned)}
}
