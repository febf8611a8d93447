package collaborators

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"receitamed/internal/usecase/interfaces"
)

// PriceClient resolves product prices from the catalog service.
type PriceClient struct {
	apiClient
}

var _ interfaces.IPriceLookup = (*PriceClient)(nil)

func NewPriceClient(baseURL, apiKey string) *PriceClient {
	return &PriceClient{apiClient: newAPIClient(baseURL, apiKey)}
}

func (c *PriceClient) GetPrice(ctx context.Context, productType, subtype string) (float64, error) {
	q := url.Values{}
	q.Set("product_type", productType)
	if subtype != "" {
		q.Set("subtype", subtype)
	}
	var out struct {
		Amount float64 `json:"amount"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/v1/prices?"+q.Encode(), nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return 0, interfaces.ErrPriceNotFound
		}
		return 0, err
	}
	return out.Amount, nil
}
