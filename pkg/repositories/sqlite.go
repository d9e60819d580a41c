package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/castillofj/touchline/pkg/board"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens a SQLite-backed repository and applies every
// migration file found in the migrations directory, in name order.
func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %w", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateRoom(ctx context.Context, room *board.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := `
	INSERT INTO rooms (room_id, slug, match_status, created_at, expires_at, version)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	var expiresAt interface{}
	if room.ExpiresAt != nil {
		expiresAt = *room.ExpiresAt
	}
	_, err = tx.ExecContext(ctx, q, room.RoomID, room.Slug, string(room.MatchStatus), room.CreatedAt, expiresAt, room.Version)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	for _, team := range room.Teams {
		q := `
		INSERT INTO teams (team_id, room_id, name, color, side)
		VALUES (?, ?, ?, ?, ?);
		`
		if _, err := tx.ExecContext(ctx, q, team.TeamID, team.RoomID, team.Name, team.Color, string(team.Side)); err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}

		for _, player := range team.Players {
			q := `
			INSERT INTO players (player_id, team_id, room_id, x, y, label, role, is_goalkeeper)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?);
			`
			if _, err := tx.ExecContext(ctx, q, player.PlayerID, player.TeamID, player.RoomID, player.X, player.Y, player.Label, player.Role, player.IsGoalkeeper); err != nil {
				return fmt.Errorf("failed to insert player: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetRoom(ctx context.Context, idOrSlug string) (*board.Room, error) {
	room := &board.Room{}
	var status string
	var expiresAt sql.NullTime
	q := `
	SELECT room_id, slug, match_status, created_at, expires_at, version
	FROM rooms WHERE room_id = ? OR slug = ?;
	`
	err := r.db.QueryRowContext(ctx, q, idOrSlug, idOrSlug).Scan(&room.RoomID, &room.Slug, &status, &room.CreatedAt, &expiresAt, &room.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to query room: %w", err)
	}
	room.MatchStatus = board.MatchStatus(status)
	if expiresAt.Valid {
		room.ExpiresAt = &expiresAt.Time
	}

	// Home before away, matching creation order.
	teamRows, err := r.db.QueryContext(ctx, `
	SELECT team_id, room_id, name, color, side
	FROM teams WHERE room_id = ? ORDER BY side DESC;
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

	playerRows, err := r.db.QueryContext(ctx, `
	SELECT player_id, team_id, room_id, x, y, label, role, is_goalkeeper
	FROM players WHERE room_id = ? ORDER BY player_id;
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

func (r *SQLiteRepository) SavePlayerPosition(ctx context.Context, player board.Player) error {
	q := `
	INSERT OR REPLACE INTO players (player_id, team_id, room_id, x, y, label, role, is_goalkeeper)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, player.PlayerID, player.TeamID, player.RoomID, player.X, player.Y, player.Label, player.Role, player.IsGoalkeeper)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateTeam(ctx context.Context, roomID, teamID, name, color string) (*board.Team, error) {
	q := `
	UPDATE teams SET name = ?, color = ?
	WHERE team_id = ? AND room_id IN (SELECT room_id FROM rooms WHERE room_id = ? OR slug = ?);
	`
	res, err := r.db.ExecContext(ctx, q, name, color, teamID, roomID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, &ErrNotFound{}
	}

	team := &board.Team{}
	var side string
	err = r.db.QueryRowContext(ctx, `
	SELECT team_id, room_id, name, color, side FROM teams WHERE team_id = ?;
	`, teamID).Scan(&team.TeamID, &team.RoomID, &team.Name, &team.Color, &side)
	if err != nil {
		return nil, fmt.Errorf("failed to query team: %w", err)
	}
	team.Side = board.TeamSide(side)

	playerRows, err := r.db.QueryContext(ctx, `
	SELECT player_id, team_id, room_id, x, y, label, role, is_goalkeeper
	FROM players WHERE team_id = ? ORDER BY player_id;
	`, teamID)
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

func (r *SQLiteRepository) SetMatchStatus(ctx context.Context, roomID string, status board.MatchStatus) (int64, error) {
	q := `
	UPDATE rooms SET match_status = ?, version = version + 1
	WHERE room_id = ? OR slug = ?;
	`
	res, err := r.db.ExecContext(ctx, q, string(status), roomID, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to update match status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return 0, &ErrNotFound{}
	}

	var version int64
	err = r.db.QueryRowContext(ctx, `
	SELECT version FROM rooms WHERE room_id = ? OR slug = ?;
	`, roomID, roomID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query version: %w", err)
	}
	return version, nil
}
