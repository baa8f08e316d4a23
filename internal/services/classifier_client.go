package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// classifierClient talks to the external ML classification endpoint: a JSON
// POST taking canonical descriptions and returning a category per form.
type classifierClient struct {
	url        string
	authToken  string
	httpClient *http.Client
}

type classifyRequest struct {
	Descriptions []string `json:"descriptions"`
}

type classifyResponse struct {
	Categories map[string]string `json:"categories"`
}

// NewClassifierClient creates an HTTP client for the classification service.
// The caller controls deadlines through ctx; no client-level timeout is set
// so the classifier race owns cancellation.
func NewClassifierClient(url, authToken string) ClassifierClientInterface {
	return &classifierClient{
		url:        url,
		authToken:  authToken,
		httpClient: &http.Client{},
	}
}

func (c *classifierClient) ClassifyCanonical(ctx context.Context, canonicals []string) (map[string]string, error) {
	if len(canonicals) == 0 {
		return map[string]string{}, nil
	}

	body, err := json.Marshal(classifyRequest{Descriptions: canonicals})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode classify response: %w", err)
	}
	if decoded.Categories == nil {
		decoded.Categories = map[string]string{}
	}
	return decoded.Categories, nil
}
