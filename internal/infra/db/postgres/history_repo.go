package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/domain/ports/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo stores archived summaries in lecture_history. Newest first is
// (ts DESC, seq DESC); seq breaks ties between equal timestamps.
type HistoryRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewHistoryRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *HistoryRepo {
	return &HistoryRepo{pool: pool, tm: tm}
}

const historyColumns = `id, content, title, preview, date, ts`

// Prepend inserts and prunes in one transaction.
func (r *HistoryRepo) Prepend(ctx context.Context, e *model.HistoryEntry, limit int) error {
	if limit <= 0 {
		limit = model.HistoryLimit
	}
	return r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ex, err := getExecutor(r.pool, tx)
		if err != nil {
			return err
		}
		const ins = `
INSERT INTO lecture_history (id, content, title, preview, date, ts)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  content = EXCLUDED.content,
  title = EXCLUDED.title,
  preview = EXCLUDED.preview;`
		if _, err := ex.Exec(ctx, ins, e.ID, e.Content, e.Title, e.Preview, e.Date, e.Timestamp); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}

		const prune = `
DELETE FROM lecture_history
WHERE seq NOT IN (
  SELECT seq FROM lecture_history ORDER BY ts DESC, seq DESC LIMIT $1
);`
		if _, err := ex.Exec(ctx, prune, limit); err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
		return nil
	})
}

func (r *HistoryRepo) List(ctx context.Context) ([]*model.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+historyColumns+` FROM lecture_history ORDER BY ts DESC, seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Content, &e.Title, &e.Preview, &e.Date, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *HistoryRepo) FindByID(ctx context.Context, id string) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	err := r.pool.QueryRow(ctx, `SELECT `+historyColumns+` FROM lecture_history WHERE id = $1`, id).
		Scan(&e.ID, &e.Content, &e.Title, &e.Preview, &e.Date, &e.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *HistoryRepo) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM lecture_history`)
	return err
}
