// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/state"
)

// PostgreSQL 基于 database/sql + lib/pq 的数据库实现
type PostgreSQL struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	p := &PostgreSQL{db: db}
	if err := p.migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PostgreSQL) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			code VARCHAR(6) UNIQUE NOT NULL,
			mafia_count INT NOT NULL,
			host_name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'waiting',
			current_phase TEXT NOT NULL DEFAULT 'none'
		)`,
		`CREATE TABLE IF NOT EXISTS players (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			room_code VARCHAR(6) NOT NULL,
			name TEXT NOT NULL,
			is_mafia BOOLEAN DEFAULT FALSE,
			eliminated BOOLEAN DEFAULT FALSE,
			word TEXT,
			score INT DEFAULT 0,
			round INT DEFAULT 1,
			UNIQUE (room_code, name)
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			room_code VARCHAR(6) NOT NULL,
			round INT NOT NULL,
			voter_name TEXT NOT NULL,
			voted_name TEXT NOT NULL,
			UNIQUE (room_code, voter_name, round)
		)`,
		`CREATE TABLE IF NOT EXISTS round_results (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			room_code VARCHAR(6) NOT NULL,
			round INT NOT NULL,
			eliminated_player TEXT NOT NULL,
			was_mafia BOOLEAN NOT NULL,
			UNIQUE (room_code, round)
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// querier 统一普通连接与事务两种执行入口
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func (p *PostgreSQL) q() querier {
	if p.tx != nil {
		return p.tx
	}
	return p.db
}

func pqTranslate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// --- Rooms ---

func (p *PostgreSQL) CreateRoom(code string, mafiaCount int, hostName string) error {
	_, err := p.q().Exec(
		`INSERT INTO rooms (code, mafia_count, host_name, status, current_phase)
		 VALUES ($1, $2, $3, $4, $5)`,
		code, mafiaCount, hostName, string(state.StatusWaiting), string(state.PhaseNone))
	return pqTranslate(err)
}

func (p *PostgreSQL) GetRoom(code string) (*models.Room, error) {
	var room models.Room
	var status, phase string
	err := p.q().QueryRow(
		`SELECT code, mafia_count, host_name, status, current_phase
		 FROM rooms WHERE code = $1 AND deleted_at IS NULL`, code).
		Scan(&room.Code, &room.MafiaCount, &room.HostName, &status, &phase)
	if err != nil {
		return nil, pqTranslate(err)
	}
	room.Status = state.Status(status)
	room.CurrentPhase = state.Phase(phase)
	return &room, nil
}

func (p *PostgreSQL) RoomExists(code string) (bool, error) {
	var exists bool
	err := p.q().QueryRow(
		`SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1 AND deleted_at IS NULL)`, code).
		Scan(&exists)
	return exists, pqTranslate(err)
}

func (p *PostgreSQL) SetRoomPhase(code string, status state.Status, phase state.Phase) error {
	result, err := p.q().Exec(
		`UPDATE rooms SET status = $1, current_phase = $2, updated_at = NOW() WHERE code = $3`,
		string(status), string(phase), code)
	if err != nil {
		return pqTranslate(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Players ---

func (p *PostgreSQL) AddPlayer(code, name string) error {
	_, err := p.q().Exec(
		`INSERT INTO players (room_code, name) VALUES ($1, $2)`, code, name)
	return pqTranslate(err)
}

func (p *PostgreSQL) GetPlayer(code, name string) (*models.Player, error) {
	var player models.Player
	err := p.q().QueryRow(
		`SELECT id, room_code, name, is_mafia, eliminated, COALESCE(word, ''), score, round
		 FROM players WHERE room_code = $1 AND name = $2 AND deleted_at IS NULL`,
		code, name).
		Scan(&player.ID, &player.RoomCode, &player.Name, &player.IsMafia,
			&player.Eliminated, &player.Word, &player.Score, &player.Round)
	if err != nil {
		return nil, pqTranslate(err)
	}
	return &player, nil
}

func (p *PostgreSQL) ListPlayers(code string) ([]models.Player, error) {
	rows, err := p.q().Query(
		`SELECT id, room_code, name, is_mafia, eliminated, COALESCE(word, ''), score, round
		 FROM players WHERE room_code = $1 AND deleted_at IS NULL ORDER BY id`, code)
	if err != nil {
		return nil, pqTranslate(err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var player models.Player
		if err := rows.Scan(&player.ID, &player.RoomCode, &player.Name, &player.IsMafia,
			&player.Eliminated, &player.Word, &player.Score, &player.Round); err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (p *PostgreSQL) CountPlayers(code string) (int, error) {
	var count int
	err := p.q().QueryRow(
		`SELECT COUNT(*) FROM players WHERE room_code = $1 AND deleted_at IS NULL`, code).
		Scan(&count)
	return count, pqTranslate(err)
}

func (p *PostgreSQL) AssignRoles(code string, round int, assignments []models.RoleAssignment) error {
	return p.Transaction(func(tx Store) error {
		q := tx.(*PostgreSQL).q()
		for _, a := range assignments {
			result, err := q.Exec(
				`UPDATE players
				 SET is_mafia = $1, word = $2, round = $3, eliminated = FALSE, updated_at = NOW()
				 WHERE id = $4 AND room_code = $5`,
				a.IsMafia, a.Word, round, a.PlayerID, code)
			if err != nil {
				return pqTranslate(err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}

func (p *PostgreSQL) AddScores(code string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := p.q().Exec(
		`UPDATE players SET score = score + 1, updated_at = NOW()
		 WHERE room_code = $1 AND name = ANY($2)`,
		code, pq.Array(names))
	return pqTranslate(err)
}

// --- Votes ---

func (p *PostgreSQL) UpsertVote(code string, round int, voter, voted string) error {
	_, err := p.q().Exec(
		`INSERT INTO votes (room_code, round, voter_name, voted_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (room_code, voter_name, round) DO UPDATE
		 SET voted_name = EXCLUDED.voted_name, updated_at = NOW()`,
		code, round, voter, voted)
	return pqTranslate(err)
}

func (p *PostgreSQL) CountDistinctVoters(code string, round int) (int, error) {
	var count int
	err := p.q().QueryRow(
		`SELECT COUNT(DISTINCT voter_name) FROM votes WHERE room_code = $1 AND round = $2`,
		code, round).
		Scan(&count)
	return count, pqTranslate(err)
}

func (p *PostgreSQL) ListVotes(code string, round int) ([]models.Vote, error) {
	rows, err := p.q().Query(
		`SELECT room_code, round, voter_name, voted_name
		 FROM votes WHERE room_code = $1 AND round = $2 ORDER BY id`, code, round)
	if err != nil {
		return nil, pqTranslate(err)
	}
	defer rows.Close()

	var votes []models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.RoomCode, &v.Round, &v.VoterName, &v.VotedName); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (p *PostgreSQL) ClearVotes(code string) error {
	_, err := p.q().Exec(`DELETE FROM votes WHERE room_code = $1`, code)
	return pqTranslate(err)
}

// --- Round results ---

func (p *PostgreSQL) CurrentRound(code string) (int, error) {
	var round int
	err := p.q().QueryRow(
		`SELECT COALESCE(MAX(round), 0) FROM round_results WHERE room_code = $1`, code).
		Scan(&round)
	return round, pqTranslate(err)
}

func (p *PostgreSQL) InsertRoundResult(code string, round int, eliminated string, wasMafia bool) error {
	_, err := p.q().Exec(
		`INSERT INTO round_results (room_code, round, eliminated_player, was_mafia)
		 VALUES ($1, $2, $3, $4)`,
		code, round, eliminated, wasMafia)
	return pqTranslate(err)
}

func (p *PostgreSQL) GetRoundResult(code string, round int) (*models.RoundResult, error) {
	var result models.RoundResult
	err := p.q().QueryRow(
		`SELECT room_code, round, eliminated_player, was_mafia, created_at
		 FROM round_results WHERE room_code = $1 AND round = $2`, code, round).
		Scan(&result.RoomCode, &result.Round, &result.EliminatedPlayer,
			&result.WasMafia, &result.Timestamp)
	if err != nil {
		return nil, pqTranslate(err)
	}
	return &result, nil
}

// --- Cleanup ---

func (p *PostgreSQL) DeleteRoom(code string) error {
	return p.Transaction(func(tx Store) error {
		q := tx.(*PostgreSQL).q()
		for _, stmt := range []string{
			`DELETE FROM votes WHERE room_code = $1`,
			`DELETE FROM round_results WHERE room_code = $1`,
			`DELETE FROM players WHERE room_code = $1`,
			`DELETE FROM rooms WHERE code = $1`,
		} {
			if _, err := q.Exec(stmt, code); err != nil {
				return pqTranslate(err)
			}
		}
		return nil
	})
}

// Transaction 事务支持。已处于事务中时直接复用当前事务。
func (p *PostgreSQL) Transaction(fn func(tx Store) error) error {
	if p.tx != nil {
		return fn(p)
	}

	tx, err := p.db.Begin()
	if err != nil {
		return err
	}

	if err := fn(&PostgreSQL{db: p.db, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
