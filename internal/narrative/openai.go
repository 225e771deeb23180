package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

// maxPromptItems caps how many recommendations are sent to the model.
const maxPromptItems = 40

// payload is the structured output requested from the model
type payload struct {
	Summary    string   `json:"summary" jsonschema_description:"Short executive summary of the purchase plan for a buyer"`
	Highlights []string `json:"highlights" jsonschema_description:"Notable items or risks, one sentence each"`
}

// OpenAINarrator asks an OpenAI model to describe a computed purchase plan.
type OpenAINarrator struct {
	client *openai.Client
	model  string
	schema map[string]any
}

// NewOpenAINarrator creates a narrator. baseURL may be empty.
func NewOpenAINarrator(apiKey, baseURL, model string) (*OpenAINarrator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key must be provided")
	}
	if model == "" {
		model = string(shared.ChatModelGPT4oMini)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	schema, err := generateSchema()
	if err != nil {
		return nil, err
	}

	return &OpenAINarrator{client: &client, model: model, schema: schema}, nil
}

// Model returns the configured model name
func (n *OpenAINarrator) Model() string {
	return n.model
}

func (n *OpenAINarrator) Narrate(ctx context.Context, result domain.AnalysisResult) (*domain.Narrative, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(n.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(BuildPrompt(result)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "purchase_plan_narrative",
					Strict:      param.NewOpt(true),
					Schema:      n.schema,
					Description: param.NewOpt("A short narrative over a computed purchase plan"),
				},
			},
		},
	}

	resp, err := n.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var out payload
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, fmt.Errorf("completion has an empty summary")
	}

	return &domain.Narrative{
		Summary:    strings.TrimSpace(out.Summary),
		Highlights: out.Highlights,
		Model:      n.model,
	}, nil
}

// BuildPrompt renders the computed plan for the model. Quantities are final;
// the model is only asked to describe them.
func BuildPrompt(result domain.AnalysisResult) string {
	items := make([]domain.PurchaseRecommendation, len(result.Recommendations))
	copy(items, result.Recommendations)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority.Rank() > items[j].Priority.Rank()
	})
	if len(items) > maxPromptItems {
		items = items[:maxPromptItems]
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a replenishment (MRP) analyst writing for a purchasing team.
The purchase quantities below were computed by a deterministic engine over a %d-day projection horizon.
Rules:
1. Do NOT recompute, round or change any quantity or priority.
2. Summarize the plan in at most 4 sentences.
3. List up to 5 highlights: urgent items, items limited by the stock ceiling, skipped records.

Summary: %s
`, result.ProjectionDays, result.Summary)

	if len(result.Diagnostics) > 0 {
		fmt.Fprintf(&b, "Skipped records: %d\n", len(result.Diagnostics))
	}

	b.WriteString("\nItems (code | priority | purchase | available | daily average | ceiling applied):\n")
	for _, r := range items {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %t\n",
			r.Code,
			r.Priority,
			replenishment.FormatQuantity(r.SuggestedQuantity),
			replenishment.FormatQuantity(r.AvailableBalance),
			replenishment.FormatQuantity(r.DailyAverage),
			r.CeilingApplied,
		)
	}
	if omitted := len(result.Recommendations) - len(items); omitted > 0 {
		fmt.Fprintf(&b, "(%d lower priority items omitted)\n", omitted)
	}

	return b.String()
}

// generateSchema builds the strict JSON schema from the payload struct.
func generateSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(payload{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	// strict mode rejects the draft identifiers
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")
	return schemaMap, nil
}

var _ Narrator = (*OpenAINarrator)(nil)
