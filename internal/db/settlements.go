package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/susu3304/splitbot/internal/settle"
)

var ErrSettlementNotFound = errors.New("settlement not found")

// SettlementRecord is one finished settlement run. Records are only ever
// appended; there is no update path.
type SettlementRecord struct {
	ID           int64                `json:"id"`
	SessionID    string               `json:"session_id"`
	Bill         float64              `json:"bill"`
	Share        float64              `json:"share"`
	Participants []settle.Participant `json:"participants"`
	Transactions []settle.Transaction `json:"transactions"`
	CreatedAt    time.Time            `json:"created_at"`
}

// InsertSettlement appends a settlement run and returns its id.
func (db *DB) InsertSettlement(ctx context.Context, rec *SettlementRecord) (int64, error) {
	participants, err := json.Marshal(rec.Participants)
	if err != nil {
		return 0, fmt.Errorf("encode participants: %w", err)
	}
	transactions, err := json.Marshal(rec.Transactions)
	if err != nil {
		return 0, fmt.Errorf("encode transactions: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO settlements (session_id, bill, share, participants, transactions)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		rec.SessionID, rec.Bill, rec.Share, participants, transactions,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// ListSettlements returns the most recent runs for a session, newest first.
func (db *DB) ListSettlements(ctx context.Context, sessionID string, limit int) ([]SettlementRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, bill, share, participants, transactions, created_at
		 FROM settlements
		 WHERE session_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SettlementRecord
	for rows.Next() {
		rec, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (db *DB) GetSettlement(ctx context.Context, id int64) (*SettlementRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, session_id, bill, share, participants, transactions, created_at
		 FROM settlements
		 WHERE id = $1`,
		id,
	)
	rec, err := scanSettlement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettlementNotFound
		}
		return nil, err
	}
	return rec, nil
}

func scanSettlement(row pgx.Row) (*SettlementRecord, error) {
	var rec SettlementRecord
	var participants, transactions []byte
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.Bill, &rec.Share, &participants, &transactions, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &rec.Participants); err != nil {
		return nil, fmt.Errorf("decode participants of settlement %d: %w", rec.ID, err)
	}
	if err := json.Unmarshal(transactions, &rec.Transactions); err != nil {
		return nil, fmt.Errorf("decode transactions of settlement %d: %w", rec.ID, err)
	}
	return &rec, nil
}
