// Package advisory answers practitioner questions about a client with a text
// generation model and keeps the resulting conversation.
package advisory

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

const systemInstruction = `You assist a chartered accountancy practice.
Answer questions about Indian tax, GST and company-law compliance for the named client.
Be concise and say so plainly when the answer depends on facts you were not given.`

// Attachment is an optional file sent along with a question.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Generator produces an answer as a lazy, finite sequence of text fragments.
// The sequence can be ranged over once; an error ends it.
type Generator interface {
	Generate(ctx context.Context, prompt string, att *Attachment) iter.Seq2[string, error]
}

// GeminiGenerator streams answers from the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a client from the environment (GEMINI_API_KEY or
// GOOGLE_API_KEY) for model. An empty model selects DefaultModel.
func NewGeminiGenerator(ctx context.Context, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, att *Attachment) iter.Seq2[string, error] {
	parts := []*genai.Part{{Text: prompt}}
	if att != nil && len(att.Data) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: att.MIMEType, Data: att.Data}})
	}
	contents := []*genai.Content{{Role: RoleUser, Parts: parts}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}

	return func(yield func(string, error) bool) {
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, config) {
			if err != nil {
				yield("", err)
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}
