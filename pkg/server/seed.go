package server

import (
	"strconv"
	"time"

	"github.com/castillofj/touchline/pkg/board"
	"github.com/google/uuid"
)

const (
	homeColor = "#0055ff"
	awayColor = "#ff0000"
	teamSize  = 11
)

// NewSeededRoom builds a fresh room with a home and an away team of eleven
// players each, goalkeeper first, mirrored over the unit-square pitch.
func NewSeededRoom(slug string) *board.Room {
	roomID := uuid.New().String()
	if slug == "" {
		slug = uuid.New().String()
	}

	room := &board.Room{
		RoomID:      roomID,
		Slug:        slug,
		MatchStatus: board.MatchStatusSetup,
		CreatedAt:   time.Now().UTC(),
		Version:     0,
	}

	home := board.Team{
		TeamID: uuid.New().String(),
		RoomID: roomID,
		Name:   "Home",
		Color:  homeColor,
		Side:   board.TeamSideHome,
	}
	away := board.Team{
		TeamID: uuid.New().String(),
		RoomID: roomID,
		Name:   "Away",
		Color:  awayColor,
		Side:   board.TeamSideAway,
	}

	for i := 0; i < teamSize; i++ {
		isGK := i == 0
		role := "Player"
		if isGK {
			role = "GK"
		}

		homeX, homeY := 0.3+float64(i/4)*0.15, 0.1+float64(i%4)*0.25
		awayX, awayY := 0.7-float64(i/4)*0.15, 0.1+float64(i%4)*0.25
		if isGK {
			homeX, homeY = 0.1, 0.5
			awayX, awayY = 0.9, 0.5
		}

		home.Players = append(home.Players, board.Player{
			PlayerID:     uuid.New().String(),
			TeamID:       home.TeamID,
			RoomID:       roomID,
			X:            homeX,
			Y:            homeY,
			Label:        strconv.Itoa(i + 1),
			Role:         role,
			IsGoalkeeper: isGK,
		})
		away.Players = append(away.Players, board.Player{
			PlayerID:     uuid.New().String(),
			TeamID:       away.TeamID,
			RoomID:       roomID,
			X:            awayX,
			Y:            awayY,
			Label:        strconv.Itoa(i + 1),
			Role:         role,
			IsGoalkeeper: isGK,
		})
	}

	room.Teams = []board.Team{home, away}
	return room
}
