package messages

import (
	"testing"

	"github.com/castillofj/touchline/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantErr  bool
		wantType string
	}{
		{
			name:     "player_moved",
			data:     `{"type":"player_moved","player":{"player_id":"p1","team_id":"t1","room_id":"r1","x":0.4,"y":0.6,"is_goalkeeper":false}}`,
			wantType: MessageTypePlayerMoved,
		},
		{
			name:     "match_status",
			data:     `{"type":"match_status","status":"live"}`,
			wantType: MessageTypeMatchStatus,
		},
		{
			name:     "unknown type is carried through",
			data:     `{"type":"unknown_future_type","whatever":1}`,
			wantType: "unknown_future_type",
		},
		{
			name:    "not json",
			data:    `this is not json`,
			wantErr: true,
		},
		{
			name:    "missing type",
			data:    `{"player":{"player_id":"p1"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DeserializeMessage([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, msg.Type)
		})
	}
}

func TestSerializeMessage_RoundTrip(t *testing.T) {
	player := board.Player{PlayerID: "p1", TeamID: "t1", RoomID: "r1", X: 0.25, Y: 0.75, Label: "7"}

	b, err := SerializeMessage(NewPlayerMoved(player))
	require.NoError(t, err)

	msg, err := DeserializeMessage(b)
	require.NoError(t, err)
	assert.Equal(t, MessageTypePlayerMoved, msg.Type)
	require.NotNil(t, msg.Player)
	assert.Equal(t, player, *msg.Player)
}

func TestSerializeMessage_InvalidPayload(t *testing.T) {
	_, err := SerializeMessage(&Message{Type: MessageTypeSnapshot})
	assert.Error(t, err)

	_, err = SerializeMessage(&Message{Type: MessageTypeMatchStatus, Status: "paused"})
	assert.Error(t, err)
}
