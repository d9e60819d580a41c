package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/castillofj/touchline/pkg/board"
	"github.com/castillofj/touchline/pkg/client"
	"github.com/castillofj/touchline/pkg/messages"
	"github.com/castillofj/touchline/pkg/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventuallyTimeout = 3 * time.Second
	eventuallyTick    = 10 * time.Millisecond
)

func newTestServer(t *testing.T) (*httptest.Server, *client.APIClient) {
	srv := NewServer(NewServerOptions{
		Repository: repositories.NewInMemoryRepository(),
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, client.NewAPIClient(ts.URL)
}

func wsBase(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestServer_CreateRoom(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/rooms", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data board.Room `json:"data"`
		Meta struct {
			RequestID string `json:"request_id"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Meta.RequestID)

	room := body.Data
	assert.NotEmpty(t, room.RoomID)
	assert.NotEmpty(t, room.Slug)
	assert.Equal(t, board.MatchStatusSetup, room.MatchStatus)
	assert.Equal(t, int64(0), room.Version)

	require.Len(t, room.Teams, 2)
	assert.Equal(t, board.TeamSideHome, room.Teams[0].Side)
	assert.Equal(t, board.TeamSideAway, room.Teams[1].Side)
	for _, team := range room.Teams {
		assert.Len(t, team.Players, 11)
		gks := 0
		for _, p := range team.Players {
			assert.Equal(t, team.TeamID, p.TeamID)
			assert.Equal(t, room.RoomID, p.RoomID)
			if p.IsGoalkeeper {
				gks++
			}
		}
		assert.Equal(t, 1, gks)
	}
}

func TestServer_CreateRoom_SlugConflict(t *testing.T) {
	ts, api := newTestServer(t)

	_, err := api.CreateRoom(context.Background(), client.CreateRoomRequest{CustomSlug: "taken"})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/rooms", "application/json", bytes.NewReader([]byte(`{"custom_slug":"taken"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_GetRoom(t *testing.T) {
	ts, api := newTestServer(t)

	created, err := api.CreateRoom(context.Background(), client.CreateRoomRequest{CustomSlug: "derby"})
	require.NoError(t, err)

	byID, err := api.GetRoom(context.Background(), created.RoomID)
	require.NoError(t, err)
	assert.Equal(t, created.RoomID, byID.RoomID)

	bySlug, err := api.GetRoom(context.Background(), "derby")
	require.NoError(t, err)
	assert.Equal(t, created.RoomID, bySlug.RoomID)

	resp, err := http.Get(ts.URL + "/rooms/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UpdateTeam(t *testing.T) {
	_, api := newTestServer(t)
	ctx := context.Background()

	room, err := api.CreateRoom(ctx, client.CreateRoomRequest{})
	require.NoError(t, err)
	teamID := room.Teams[0].TeamID

	team, err := api.UpdateTeam(ctx, room.RoomID, teamID, client.TeamUpdate{Name: "Blues", Color: "#112233"})
	require.NoError(t, err)
	assert.Equal(t, "Blues", team.Name)
	assert.Equal(t, "#112233", team.Color)
	assert.Len(t, team.Players, 11)

	// Bad color is rejected.
	_, err = api.UpdateTeam(ctx, room.RoomID, teamID, client.TeamUpdate{Name: "Blues", Color: "blue"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	// Teams lock once the match is live.
	_, err = api.StartMatch(ctx, room.RoomID)
	require.NoError(t, err)
	_, err = api.UpdateTeam(ctx, room.RoomID, teamID, client.TeamUpdate{Name: "Reds", Color: "#ff0000"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Cannot edit team after match start", apiErr.Detail)
}

func TestServer_MatchFlow(t *testing.T) {
	_, api := newTestServer(t)
	ctx := context.Background()

	room, err := api.CreateRoom(ctx, client.CreateRoomRequest{})
	require.NoError(t, err)

	status, err := api.StartMatch(ctx, room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, board.MatchStatusLive, status)

	// Starting twice is idempotent.
	status, err = api.StartMatch(ctx, room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, board.MatchStatusLive, status)

	got, err := api.GetRoom(ctx, room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, board.MatchStatusLive, got.MatchStatus)
	assert.Equal(t, int64(1), got.Version)

	status, err = api.EndMatch(ctx, room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, board.MatchStatusExpired, status)

	got, err = api.GetRoom(ctx, room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestServer_WS_UnknownRoom(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ws/missing/client-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// connectClient brings up a full sync client against the test server and
// waits until its socket is open.
func connectClient(t *testing.T, ts *httptest.Server, roomID, clientID string) (*board.Store, *client.Channel) {
	store := board.NewStore()
	channel := client.NewChannel(client.NewChannelOptions{
		WSBaseURL:    wsBase(ts),
		Router:       client.NewRouter(store),
		BackoffFloor: 10 * time.Millisecond,
	})
	channel.Connect(context.Background(), roomID, clientID)
	t.Cleanup(channel.Close)
	require.Eventually(t, func() bool {
		return channel.State() == client.StateConnected
	}, eventuallyTimeout, eventuallyTick)
	return store, channel
}

func TestServer_MoveRoundTrip(t *testing.T) {
	ts, api := newTestServer(t)
	ctx := context.Background()

	room, err := api.CreateRoom(ctx, client.CreateRoomRequest{})
	require.NoError(t, err)

	storeA, channelA := connectClient(t, ts, room.RoomID, "alice")
	storeB, _ := connectClient(t, ts, room.RoomID, "bob")

	storeA.ApplySnapshot(room)
	storeB.ApplySnapshot(room)

	moved := room.Teams[0].Players[0]
	moved.X, moved.Y = 0.42, 0.24

	// Optimistic local edit first, then the network send.
	storeA.ApplyPlayerUpdate(moved)
	channelA.Send(messages.NewPlayerMoved(moved))

	// The other client converges on the move.
	require.Eventually(t, func() bool {
		team := storeB.Room().Team(moved.TeamID)
		return team != nil && team.Players[0].X == 0.42
	}, eventuallyTimeout, eventuallyTick)

	// The server persisted it, so a fresh snapshot carries it too.
	require.Eventually(t, func() bool {
		got, err := api.GetRoom(ctx, room.RoomID)
		if err != nil {
			return false
		}
		team := got.Team(moved.TeamID)
		return team != nil && team.Players[0].X == 0.42
	}, eventuallyTimeout, eventuallyTick)

	// The sender is excluded from the echo: its store still holds its own
	// optimistic value, applied exactly once.
	team := storeA.Room().Team(moved.TeamID)
	require.NotNil(t, team)
	assert.Len(t, team.Players, 11)
}

func TestServer_MatchStatusBroadcast(t *testing.T) {
	ts, api := newTestServer(t)
	ctx := context.Background()

	room, err := api.CreateRoom(ctx, client.CreateRoomRequest{})
	require.NoError(t, err)

	store, _ := connectClient(t, ts, room.RoomID, "alice")
	store.ApplySnapshot(room)

	_, err = api.StartMatch(ctx, room.RoomID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return store.MatchStatus() == board.MatchStatusLive
	}, eventuallyTimeout, eventuallyTick)
}

func TestServer_TeamUpdateBroadcast(t *testing.T) {
	ts, api := newTestServer(t)
	ctx := context.Background()

	room, err := api.CreateRoom(ctx, client.CreateRoomRequest{})
	require.NoError(t, err)

	store, _ := connectClient(t, ts, room.RoomID, "alice")
	store.ApplySnapshot(room)

	teamID := room.Teams[0].TeamID
	_, err = api.UpdateTeam(ctx, room.RoomID, teamID, client.TeamUpdate{Name: "Blues", Color: "#112233"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		team := store.Room().Team(teamID)
		return team != nil && team.Name == "Blues"
	}, eventuallyTimeout, eventuallyTick)
}

func TestServer_UserLeftBroadcast(t *testing.T) {
	ts, api := newTestServer(t)
	ctx := context.Background()

	room, err := api.CreateRoom(ctx, client.CreateRoomRequest{})
	require.NoError(t, err)

	_, channelA := connectClient(t, ts, room.RoomID, "alice")
	_, channelB := connectClient(t, ts, room.RoomID, "bob")

	var mu sync.Mutex
	var left []string
	channelB.Subscribe(func(msg *messages.Message) {
		if msg.Type == messages.MessageTypeUserLeft {
			mu.Lock()
			left = append(left, msg.ClientID)
			mu.Unlock()
		}
	})

	channelA.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, id := range left {
			if id == "alice" {
				return true
			}
		}
		return false
	}, eventuallyTimeout, eventuallyTick)
}
