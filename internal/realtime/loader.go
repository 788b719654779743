package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// HTTPSnapshotLoader fetches registry snapshots from the REST API. It is the
// production SnapshotLoader behind the reconciler: reloads go through the
// same endpoint the initial page load uses.
type HTTPSnapshotLoader struct {
	baseURL    string
	registryID string
	token      string
	client     *http.Client
}

var _ ports.SnapshotLoader = (*HTTPSnapshotLoader)(nil)

// NewHTTPSnapshotLoader creates a loader for one registry.
// baseURL is the API root, e.g. "http://localhost:8080/api/v1".
func NewHTTPSnapshotLoader(baseURL, registryID, token string) *HTTPSnapshotLoader {
	return &HTTPSnapshotLoader{
		baseURL:    baseURL,
		registryID: registryID,
		token:      token,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches the full snapshot for the registry.
func (l *HTTPSnapshotLoader) Load(ctx context.Context) (*domain.Snapshot, error) {
	url := fmt.Sprintf("%s/registries/%s/snapshot", l.baseURL, l.registryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request failed: %s", resp.Status)
	}

	var snap domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
