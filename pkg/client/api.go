package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/castillofj/touchline/pkg/board"
)

// APIClient talks to the room HTTP API, which hands out the initial
// snapshot before the socket takes over.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the API at the given base URL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Detail)
}

// TeamUpdate is the editable part of a team.
type TeamUpdate struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CreateRoomRequest optionally pins the room slug.
type CreateRoomRequest struct {
	CustomSlug string `json:"custom_slug,omitempty"`
}

type roomResponse struct {
	Data *board.Room `json:"data"`
}

type teamResponse struct {
	Data *board.Team `json:"data"`
}

type matchStatusResponse struct {
	MatchStatus board.MatchStatus `json:"match_status"`
}

// CreateRoom creates a room with seeded teams and players and returns the
// full initial snapshot.
func (c *APIClient) CreateRoom(ctx context.Context, req CreateRoomRequest) (*board.Room, error) {
	var resp roomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return resp.Data, nil
}

// GetRoom fetches a full room snapshot by room ID or slug.
func (c *APIClient) GetRoom(ctx context.Context, roomID string) (*board.Room, error) {
	var resp roomResponse
	if err := c.do(ctx, http.MethodGet, "/rooms/"+roomID, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return resp.Data, nil
}

// UpdateTeam renames or recolors a team. Rejected by the server once the
// match has left the setup phase.
func (c *APIClient) UpdateTeam(ctx context.Context, roomID, teamID string, update TeamUpdate) (*board.Team, error) {
	var resp teamResponse
	path := fmt.Sprintf("/rooms/%s/teams/%s", roomID, teamID)
	if err := c.do(ctx, http.MethodPut, path, update, &resp); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return resp.Data, nil
}

// StartMatch moves the room's match to live.
func (c *APIClient) StartMatch(ctx context.Context, roomID string) (board.MatchStatus, error) {
	var resp matchStatusResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/rooms/%s/match/start", roomID), nil, &resp); err != nil {
		return "", fmt.Errorf("failed to start match: %w", err)
	}
	return resp.MatchStatus, nil
}

// EndMatch moves the room's match to expired.
func (c *APIClient) EndMatch(ctx context.Context, roomID string) (board.MatchStatus, error) {
	var resp matchStatusResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/rooms/%s/match/end", roomID), nil, &resp); err != nil {
		return "", fmt.Errorf("failed to end match: %w", err)
	}
	return resp.MatchStatus, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{StatusCode: resp.StatusCode, Detail: errBody.Detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
