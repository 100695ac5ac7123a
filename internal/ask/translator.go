// Package ask turns a natural-language question about the sales data into a
// structured query request the engine facade can answer. The model never
// sees the records, only the catalog of available views; all numbers come
// from the engine.
package ask

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// View names a derived view the translator may select.
const (
	ViewKpis          = "kpis"
	ViewTimeSeries    = "time_series"
	ViewByCountry     = "by_country"
	ViewByProductLine = "by_product_line"
	ViewTopCustomers  = "top_customers"
)

// Request is the translator's output: which view answers the question and
// with which parameters. Parameter validation stays with the engine facade.
type Request struct {
	View        string `json:"view"`
	Granularity string `json:"granularity,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// Translator converts a question into a query request. The interface
// enables mocking in handler tests.
type Translator interface {
	Translate(ctx context.Context, question string) (*Request, error)
}

// GeminiTranslator is the concrete Translator backed by Gemini.
type GeminiTranslator struct {
	model string
}

// NewGeminiTranslator creates a translator using the given model name.
func NewGeminiTranslator(model string) *GeminiTranslator {
	return &GeminiTranslator{model: model}
}

const askPrompt = "You are a query router for a sales analytics service.\n\n" +
	"Task:\n" +
	"- Read the user's question about sales data.\n" +
	"- Pick exactly ONE of the available views that best answers it.\n" +
	"- Output STRICT JSON only (no comments, no extra text).\n\n" +
	"Available views:\n" +
	"- \"kpis\": total revenue, average order value, order count, distinct customers\n" +
	"- \"time_series\": revenue and order count over time; set \"granularity\" to \"monthly\", \"quarterly\" or \"yearly\"\n" +
	"- \"by_country\": revenue and order count per country, highest first\n" +
	"- \"by_product_line\": revenue and order count per product line, highest first\n" +
	"- \"top_customers\": customer ranking by revenue; set \"limit\" (1-100)\n\n" +
	"Output one JSON object with fields:\n" +
	"- \"view\": string, one of the view names above\n" +
	"- \"granularity\": string, only for time_series\n" +
	"- \"limit\": number, only for top_customers\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"

// Translate sends the question to Gemini and parses the selected view.
func (t *GeminiTranslator) Translate(ctx context.Context, question string) (*Request, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Translate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: askPrompt + "\nUSER QUESTION: " + question},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Translate: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Translate: empty response from model")
	}

	req, err := parseResponse(rawText)
	if err != nil {
		return nil, fmt.Errorf("Translate: %w", err)
	}
	return req, nil
}
