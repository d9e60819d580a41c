package client

import (
	"testing"

	"github.com/castillofj/touchline/pkg/board"
	"github.com/castillofj/touchline/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardPlayer(id string, x, y float64) board.Player {
	return board.Player{PlayerID: id, TeamID: "team-home", RoomID: "room-1", X: x, Y: y}
}

func routerTestRoom() *board.Room {
	return &board.Room{
		RoomID:      "room-1",
		Slug:        "derby",
		MatchStatus: board.MatchStatusSetup,
		Version:     1,
		Teams: []board.Team{
			{
				TeamID: "team-home",
				RoomID: "room-1",
				Name:   "Home",
				Color:  "#0055ff",
				Side:   board.TeamSideHome,
				Players: []board.Player{
					boardPlayer("p1", 0.1, 0.5),
				},
			},
		},
	}
}

func TestRouter_Route(t *testing.T) {
	tests := []struct {
		name  string
		msg   *messages.Message
		check func(t *testing.T, store *board.Store)
	}{
		{
			name: "snapshot replaces the room",
			msg:  messages.NewSnapshot(&board.Room{RoomID: "room-2", MatchStatus: board.MatchStatusLive}),
			check: func(t *testing.T, store *board.Store) {
				require.NotNil(t, store.Room())
				assert.Equal(t, "room-2", store.Room().RoomID)
				assert.Equal(t, board.MatchStatusLive, store.MatchStatus())
			},
		},
		{
			name: "player_moved updates the player",
			msg:  messages.NewPlayerMoved(boardPlayer("p1", 0.7, 0.7)),
			check: func(t *testing.T, store *board.Store) {
				team := store.Room().Team("team-home")
				require.NotNil(t, team)
				assert.Equal(t, 0.7, team.Players[0].X)
			},
		},
		{
			name: "team_updated replaces the team",
			msg: messages.NewTeamUpdated(board.Team{
				TeamID: "team-home", RoomID: "room-1", Name: "Blues", Color: "#0000aa", Side: board.TeamSideHome,
			}),
			check: func(t *testing.T, store *board.Store) {
				team := store.Room().Team("team-home")
				require.NotNil(t, team)
				assert.Equal(t, "Blues", team.Name)
			},
		},
		{
			name: "match_status updates both copies",
			msg:  messages.NewMatchStatus(board.MatchStatusLive),
			check: func(t *testing.T, store *board.Store) {
				assert.Equal(t, board.MatchStatusLive, store.MatchStatus())
				assert.Equal(t, board.MatchStatusLive, store.Room().MatchStatus)
			},
		},
		{
			name: "unknown type leaves everything unchanged",
			msg:  &messages.Message{Type: "unknown_future_type"},
			check: func(t *testing.T, store *board.Store) {
				assert.Equal(t, routerTestRoom(), store.Room())
				assert.Equal(t, board.MatchStatusSetup, store.MatchStatus())
			},
		},
		{
			name: "user_left has no store effect",
			msg:  messages.NewUserLeft("someone"),
			check: func(t *testing.T, store *board.Store) {
				assert.Equal(t, routerTestRoom(), store.Room())
			},
		},
		{
			name: "player_moved without player is ignored",
			msg:  &messages.Message{Type: messages.MessageTypePlayerMoved},
			check: func(t *testing.T, store *board.Store) {
				assert.Equal(t, routerTestRoom(), store.Room())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := board.NewStore()
			store.ApplySnapshot(routerTestRoom())

			router := NewRouter(store)
			router.Route(tt.msg)

			tt.check(t, store)
		})
	}
}

func TestRouter_OrderingAcrossMessages(t *testing.T) {
	store := board.NewStore()
	store.ApplySnapshot(routerTestRoom())
	router := NewRouter(store)

	// Two moves for the same player delivered in order: the later one wins
	// regardless of any gap between them.
	router.Route(messages.NewPlayerMoved(boardPlayer("p1", 0.2, 0.2)))
	router.Route(messages.NewPlayerMoved(boardPlayer("p1", 0.9, 0.9)))

	team := store.Room().Team("team-home")
	require.NotNil(t, team)
	assert.Equal(t, 0.9, team.Players[0].X)
	assert.Equal(t, 0.9, team.Players[0].Y)
}
