package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/castillofj/touchline/pkg/board"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a Postgres-backed repository.
// It panics if it is unable to connect to the database.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) Repository {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Unable to connect to database: %v\n", err))
	}
	return &PostgresRepository{
		conn: conn,
	}
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) CreateRoom(ctx context.Context, room *board.Room) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO rooms (room_id, slug, match_status, created_at, expires_at, version)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, q, room.RoomID, room.Slug, string(room.MatchStatus), room.CreatedAt, room.ExpiresAt, room.Version)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	for _, team := range room.Teams {
		q := `
		INSERT INTO teams (team_id, room_id, name, color, side)
		VALUES ($1, $2, $3, $4, $5);
		`
		_, err = tx.Exec(ctx, q, team.TeamID, team.RoomID, team.Name, team.Color, string(team.Side))
		if err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}

		for _, player := range team.Players {
			q := `
			INSERT INTO players (player_id, team_id, room_id, x, y, label, role, is_goalkeeper)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
			`
			_, err = tx.Exec(ctx, q, player.PlayerID, player.TeamID, player.RoomID, player.X, player.Y, player.Label, player.Role, player.IsGoalkeeper)
			if err != nil {
				return fmt.Errorf("failed to insert player: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetRoom(ctx context.Context, idOrSlug string) (*board.Room, error) {
	room := &board.Room{}
	var status string
	q := `
	SELECT room_id, slug, match_status, created_at, expires_at, version
	FROM rooms WHERE room_id = $1 OR slug = $1;
	`
	err := r.conn.QueryRow(ctx, q, idOrSlug).Scan(&room.RoomID, &room.Slug, &status, &room.CreatedAt, &room.ExpiresAt, &room.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to query room: %w", err)
	}
	room.MatchStatus = board.MatchStatus(status)

	// Home before away, matching creation order.
	teamRows, err := r.conn.Query(ctx, `
	SELECT team_id, room_id, name, color, side
	FROM teams WHERE room_id = $1 ORDER BY side DESC;
	`, room.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer teamRows.Close()

	for teamRows.Next() {
		team := board.Team{}
		var side string
		if err := teamRows.Scan(&team.TeamID, &team.RoomID, &team.Name, &team.Color, &side); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		team.Side = board.TeamSide(side)
		room.Teams = append(room.Teams, team)
	}
	if err := teamRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}

	playerRows, err := r.conn.Query(ctx, `
	SELECT player_id, team_id, room_id, x, y, label, role, is_goalkeeper
	FROM players WHERE room_id = $1 ORDER BY player_id;
	`, room.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer playerRows.Close()

	for playerRows.Next() {
		player := board.Player{}
		if err := playerRows.Scan(&player.PlayerID, &player.TeamID, &player.RoomID, &player.X, &player.Y, &player.Label, &player.Role, &player.IsGoalkeeper); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		if team := room.Team(player.TeamID); team != nil {
			team.Players = append(team.Players, player)
		}
	}
	if err := playerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return room, nil
}

func (r *PostgresRepository) SavePlayerPosition(ctx context.Context, player board.Player) error {
	q := `
	INSERT INTO players (player_id, team_id, room_id, x, y, label, role, is_goalkeeper)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (player_id) DO UPDATE SET x = $4, y = $5, label = $6, role = $7, is_goalkeeper = $8;
	`
	_, err := r.conn.Exec(ctx, q, player.PlayerID, player.TeamID, player.RoomID, player.X, player.Y, player.Label, player.Role, player.IsGoalkeeper)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateTeam(ctx context.Context, roomID, teamID, name, color string) (*board.Team, error) {
	q := `
	UPDATE teams SET name = $1, color = $2
	WHERE team_id = $3 AND room_id IN (SELECT room_id FROM rooms WHERE room_id = $4 OR slug = $4)
	RETURNING team_id, room_id, name, color, side;
	`
	team := &board.Team{}
	var side string
	err := r.conn.QueryRow(ctx, q, name, color, teamID, roomID).Scan(&team.TeamID, &team.RoomID, &team.Name, &team.Color, &side)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	team.Side = board.TeamSide(side)

	playerRows, err := r.conn.Query(ctx, `
	SELECT player_id, team_id, room_id, x, y, label, role, is_goalkeeper
	FROM players WHERE team_id = $1 ORDER BY player_id;
	`, team.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer playerRows.Close()

	for playerRows.Next() {
		player := board.Player{}
		if err := playerRows.Scan(&player.PlayerID, &player.TeamID, &player.RoomID, &player.X, &player.Y, &player.Label, &player.Role, &player.IsGoalkeeper); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		team.Players = append(team.Players, player)
	}
	if err := playerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return team, nil
}

func (r *PostgresRepository) SetMatchStatus(ctx context.Context, roomID string, status board.MatchStatus) (int64, error) {
	q := `
	UPDATE rooms SET match_status = $1, version = version + 1
	WHERE room_id = $2 OR slug = $2
	RETURNING version;
	`
	var version int64
	err := r.conn.QueryRow(ctx, q, string(status), roomID).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &ErrNotFound{}
		}
		return 0, fmt.Errorf("failed to update match status: %w", err)
	}
	return version, nil
}
