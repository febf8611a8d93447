package collaborators

import (
	"context"
	"encoding/json"
	"net/http"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"
)

// AIReaderClient calls the document-reading service that summarizes and
// risk-rates submitted prescriptions and exam orders.
type AIReaderClient struct {
	apiClient
}

var _ interfaces.IAIReader = (*AIReaderClient)(nil)

func NewAIReaderClient(baseURL, apiKey string) *AIReaderClient {
	return &AIReaderClient{apiClient: newAPIClient(baseURL, apiKey)}
}

func (c *AIReaderClient) Analyze(ctx context.Context, images []string, text string) (entities.AIAnalysis, error) {
	in := map[string]any{
		"images": images,
		"text":   text,
	}
	var out struct {
		Summary       string          `json:"summary"`
		Extraction    json.RawMessage `json:"extraction"`
		Risk          string          `json:"risk"`
		ReadabilityOk bool            `json:"readability_ok"`
		UserMessage   string          `json:"user_message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/readings", in, &out); err != nil {
		return entities.AIAnalysis{}, err
	}
	return entities.AIAnalysis{
		Summary:       out.Summary,
		Extraction:    out.Extraction,
		Risk:          out.Risk,
		ReadabilityOk: out.ReadabilityOk,
		UserMessage:   out.UserMessage,
	}, nil
}
