package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quoteflow-backend/shared/config"
)

// ActivityClient handles communication with activity service
type ActivityClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewActivityClient creates a new activity client
func NewActivityClient() *ActivityClient {
	cfg := config.GetConfig()
	return &ActivityClient{
		baseURL: cfg.ActivityServiceURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// OwnershipChangedEvent is the domain event emitted once per completed
// transfer. The activity service records it durably and notifies both owners.
type OwnershipChangedEvent struct {
	EntityKind string           `json:"entity_kind"`
	EntityID   string           `json:"entity_id"`
	OldOwnerID string           `json:"old_owner_id"`
	NewOwnerID string           `json:"new_owner_id"`
	Cascaded   bool             `json:"cascaded"`
	Counts     map[string]int64 `json:"counts,omitempty"`
	ActorID    string           `json:"actor_id,omitempty"`
	Timestamp  string           `json:"timestamp"`
}

// PublishOwnershipChanged sends an OwnershipChanged event to the activity service
func (ac *ActivityClient) PublishOwnershipChanged(event OwnershipChangedEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}

	resp, err := ac.httpClient.Post(
		fmt.Sprintf("%s/api/activity/ownership-changes", ac.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("activity service returned status: %d", resp.StatusCode)
	}

	return nil
}
