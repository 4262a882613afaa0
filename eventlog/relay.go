package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RelayClient lê eventos pendentes de um receptor remoto (outra instância
// expondo GET /api/events). Implementa a mesma interface de fonte que o Log
// local, então o poller não sabe a diferença.
type RelayClient struct {
	BaseURL string
	APIKey  string
}

type relayPage struct {
	Events     []Event `json:"events"`
	NextCursor int64   `json:"nextCursor"`
}

func (c RelayClient) Read(ctx context.Context, after int64) ([]Event, int64, error) {
	base := strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return nil, after, fmt.Errorf("relay sem base url")
	}
	url := fmt.Sprintf("%s/api/events?after=%d", base, after)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, after, err
	}
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, after, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, after, fmt.Errorf("relay error: status=%d body=%s", resp.StatusCode, string(raw))
	}

	var page relayPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, after, err
	}
	return page.Events, page.NextCursor, nil
}
