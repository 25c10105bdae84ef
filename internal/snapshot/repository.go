package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested snapshot was not found.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a stored portfolio view for one account and day.
type Snapshot struct {
	ID           int             `json:"id"`
	AccountID    int             `json:"accountId"`
	SnapshotDate time.Time       `json:"snapshotDate"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Repository defines persistent storage for portfolio snapshots.
type Repository interface {
	Save(ctx context.Context, accountID int, date time.Time, data json.RawMessage) error
	GetLatest(ctx context.Context, account string) (*Snapshot, error)
	GetByDate(ctx context.Context, account string, date time.Time) (*Snapshot, error)
	List(ctx context.Context, account string, limit int) ([]Snapshot, error)
	EnsureAccount(ctx context.Context, address, label string) (int, error)
	GetAccountID(ctx context.Context, address string) (int, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL snapshot repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, accountID int, date time.Time, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio_snapshots (account_id, snapshot_date, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (account_id, snapshot_date)
		 DO UPDATE SET data = $3::jsonb`,
		accountID, date, data)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context, account string) (*Snapshot, error) {
	var s Snapshot
	err := r.pool.QueryRow(ctx,
		`SELECT ps.id, ps.account_id, ps.snapshot_date, ps.data, ps.created_at
		 FROM portfolio_snapshots ps
		 JOIN accounts a ON a.id = ps.account_id
		 WHERE a.address = $1
		 ORDER BY ps.snapshot_date DESC
		 LIMIT 1`, account).Scan(&s.ID, &s.AccountID, &s.SnapshotDate, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) GetByDate(ctx context.Context, account string, date time.Time) (*Snapshot, error) {
	var s Snapshot
	err := r.pool.QueryRow(ctx,
		`SELECT ps.id, ps.account_id, ps.snapshot_date, ps.data, ps.created_at
		 FROM portfolio_snapshots ps
		 JOIN accounts a ON a.id = ps.account_id
		 WHERE a.address = $1 AND ps.snapshot_date = $2`, account, date).
		Scan(&s.ID, &s.AccountID, &s.SnapshotDate, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting snapshot by date: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) List(ctx context.Context, account string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx,
		`SELECT ps.id, ps.account_id, ps.snapshot_date, ps.data, ps.created_at
		 FROM portfolio_snapshots ps
		 JOIN accounts a ON a.id = ps.account_id
		 WHERE a.address = $1
		 ORDER BY ps.snapshot_date DESC
		 LIMIT $2`, account, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.AccountID, &s.SnapshotDate, &s.Data, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *PgRepository) EnsureAccount(ctx context.Context, address, label string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (address, label)
		 VALUES ($1, $2)
		 ON CONFLICT (address) DO UPDATE SET label = $2
		 RETURNING id`,
		address, label).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensuring account %s: %w", address, err)
	}
	return id, nil
}

func (r *PgRepository) GetAccountID(ctx context.Context, address string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM accounts WHERE address = $1`, address).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("getting account id for %s: %w", address, err)
	}
	return id, nil
}
