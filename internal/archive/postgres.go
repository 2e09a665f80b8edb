package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/duelchess/pkg/chessdto"
)

// Schema creates the archive table.
const Schema = `
CREATE TABLE IF NOT EXISTS duel_games (
	game_id       TEXT PRIMARY KEY,
	code          TEXT NOT NULL,
	white_id      TEXT NOT NULL,
	white_name    TEXT NOT NULL,
	black_id      TEXT NOT NULL,
	black_name    TEXT NOT NULL,
	result        TEXT NOT NULL,
	status        TEXT NOT NULL,
	moves_coord   JSONB NOT NULL,
	moves_san     JSONB NOT NULL,
	pgn           TEXT NOT NULL,
	final_fen     TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	ended_at      TIMESTAMPTZ NOT NULL,
	white_time_ms BIGINT NOT NULL DEFAULT 0,
	black_time_ms BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS duel_games_ended_at_idx ON duel_games (ended_at DESC);`

type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(databaseURL string) (*PostgresRecorder, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresRecorder{db: db}, nil
}

func (r *PostgresRecorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts the finished game.
func (r *PostgresRecorder) SaveResult(ctx context.Context, res Result) error {
	if r == nil || r.db == nil {
		return nil
	}
	g, err := Finish(res)
	if err != nil {
		return err
	}
	coord, err := json.Marshal(g.MovesCoord)
	if err != nil {
		return fmt.Errorf("marshal moves_coord: %w", err)
	}
	san, err := json.Marshal(g.MovesSAN)
	if err != nil {
		return fmt.Errorf("marshal moves_san: %w", err)
	}

	const q = `
		INSERT INTO duel_games (
			game_id, code, white_id, white_name, black_id, black_name,
			result, status, moves_coord, moves_san, pgn, final_fen,
			started_at, ended_at, white_time_ms, black_time_ms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11, $12, $13, $14, $15, $16
		) ON CONFLICT (game_id) DO UPDATE SET
			result=EXCLUDED.result,
			status=EXCLUDED.status,
			moves_coord=EXCLUDED.moves_coord,
			moves_san=EXCLUDED.moves_san,
			pgn=EXCLUDED.pgn,
			final_fen=EXCLUDED.final_fen,
			ended_at=EXCLUDED.ended_at,
			white_time_ms=EXCLUDED.white_time_ms,
			black_time_ms=EXCLUDED.black_time_ms`

	_, err = r.db.ExecContext(ctx, q,
		g.GameID, g.Code,
		g.White.ID, g.White.Name,
		g.Black.ID, g.Black.Name,
		g.Result, g.Status, string(coord), string(san), g.PGN, g.FinalFEN,
		g.StartedAt, g.EndedAt, g.WhiteTimeMS, g.BlackTimeMS,
	)
	if err != nil {
		return fmt.Errorf("upsert duel game: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Recent(ctx context.Context, limit int) ([]chessdto.FinishedGame, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
		SELECT
			game_id, code, white_id, white_name, black_id, black_name,
			result, status, moves_coord, moves_san, pgn, final_fen,
			started_at, ended_at, white_time_ms, black_time_ms
		FROM duel_games
		ORDER BY ended_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("select duel games: %w", err)
	}
	defer rows.Close()

	games := make([]chessdto.FinishedGame, 0, limit)
	for rows.Next() {
		var (
			g         chessdto.FinishedGame
			coordJSON []byte
			sanJSON   []byte
		)
		if err := rows.Scan(
			&g.GameID, &g.Code,
			&g.White.ID, &g.White.Name,
			&g.Black.ID, &g.Black.Name,
			&g.Result, &g.Status, &coordJSON, &sanJSON, &g.PGN, &g.FinalFEN,
			&g.StartedAt, &g.EndedAt, &g.WhiteTimeMS, &g.BlackTimeMS,
		); err != nil {
			return nil, fmt.Errorf("scan duel game: %w", err)
		}
		if err := json.Unmarshal(coordJSON, &g.MovesCoord); err != nil {
			return nil, fmt.Errorf("unmarshal moves_coord: %w", err)
		}
		if err := json.Unmarshal(sanJSON, &g.MovesSAN); err != nil {
			return nil, fmt.Errorf("unmarshal moves_san: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
