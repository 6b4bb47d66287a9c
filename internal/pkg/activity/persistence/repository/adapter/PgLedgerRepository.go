package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	activity "github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
	profileAdapter "github.com/kanaksh-py/startup-backend/internal/pkg/profile/persistence/repository/adapter"
)

var errNilPool = errors.New("PgLedgerRepository: nil pool")

// PgLedgerRepository keeps the ledger in the last_post_date/operating_status columns of
// directory.startup and directory.incubator, and posts in feed.post.
type PgLedgerRepository struct {
	pool *pgxpool.Pool
}

func NewPgLedgerRepository(pool *pgxpool.Pool) *PgLedgerRepository {
	return &PgLedgerRepository{pool: pool}
}

var (
	_ repository.LedgerRepository = (*PgLedgerRepository)(nil)
	_ repository.PostStore        = (*PgLedgerRepository)(nil)
)

func tableFor(kind profile.Kind) (string, error) {
	table, ok := profileAdapter.Tables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", profile.ErrInvalidKind, kind)
	}
	return table, nil
}

func (r *PgLedgerRepository) Get(ctx context.Context, ref profile.Ref) (activity.Ledger, error) {
	if r == nil || r.pool == nil {
		return activity.Ledger{}, errNilPool
	}
	table, err := tableFor(ref.Kind)
	if err != nil {
		return activity.Ledger{}, err
	}
	l := activity.Ledger{Ref: ref}
	var status string
	err = r.pool.QueryRow(ctx,
		"SELECT last_post_date, operating_status, created_at FROM "+table+" WHERE id = $1", ref.ID,
	).Scan(&l.LastPostDate, &status, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return activity.Ledger{}, profile.ErrNotFound
	}
	if err != nil {
		return activity.Ledger{}, err
	}
	l.OperatingStatus = activity.OperatingStatus(status)
	return l, nil
}

// DeactivateDormant applies the same guarded update to both directories in one transaction.
func (r *PgLedgerRepository) DeactivateDormant(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	var total int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, kind := range profile.Kinds {
			table, err := tableFor(kind)
			if err != nil {
				return err
			}
			ct, err := tx.Exec(ctx, `
				UPDATE `+table+`
				SET operating_status = 'inactive'
				WHERE operating_status = 'active' AND COALESCE(last_post_date, created_at) <= $1
			`, cutoff)
			if err != nil {
				return err
			}
			total += ct.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PgLedgerRepository) ListWarned(ctx context.Context, from, to time.Time) ([]activity.Ledger, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	var out []activity.Ledger
	for _, kind := range profile.Kinds {
		table, err := tableFor(kind)
		if err != nil {
			return nil, err
		}
		rows, err := r.pool.Query(ctx, `
			SELECT id, last_post_date, operating_status, created_at
			FROM `+table+`
			WHERE operating_status = 'active'
			  AND COALESCE(last_post_date, created_at) > $1
			  AND COALESCE(last_post_date, created_at) <= $2
			ORDER BY id
		`, from, to)
		if err != nil {
			return nil, err
		}
		ledgers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (activity.Ledger, error) {
			l := activity.Ledger{Ref: profile.Ref{Kind: kind}}
			var status string
			if err := row.Scan(&l.Ref.ID, &l.LastPostDate, &status, &l.CreatedAt); err != nil {
				return activity.Ledger{}, err
			}
			l.OperatingStatus = activity.OperatingStatus(status)
			return l, nil
		})
		if err != nil {
			return nil, err
		}
		out = append(out, ledgers...)
	}
	return out, nil
}

// PublishPost inserts the post and resets the author's ledger in one transaction.
func (r *PgLedgerRepository) PublishPost(ctx context.Context, p activity.Post) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	table, err := tableFor(p.Author.Kind)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			"UPDATE "+table+" SET last_post_date = $2, operating_status = 'active' WHERE id = $1",
			p.Author.ID, p.CreatedAt)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return profile.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO feed.post (id, author_kind, author_id, content, created_at)
			VALUES ($1::uuid, $2, $3, $4, $5)
		`, p.ID, string(p.Author.Kind), p.Author.ID, p.Content, p.CreatedAt)
		return err
	})
}
