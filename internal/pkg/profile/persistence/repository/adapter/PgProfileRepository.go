package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/profile/persistence/repository/port"
)

// Tables maps each kind to its directory table. Table names are never taken from input.
var Tables = map[profile.Kind]string{
	profile.KindStartup:   "directory.startup",
	profile.KindIncubator: "directory.incubator",
}

type PgProfileRepository struct {
	pool  *pgxpool.Pool
	kind  profile.Kind
	table string
}

func NewPgProfileRepository(pool *pgxpool.Pool, kind profile.Kind) (*PgProfileRepository, error) {
	table, ok := Tables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", profile.ErrInvalidKind, kind)
	}
	return &PgProfileRepository{pool: pool, kind: kind, table: table}, nil
}

var _ repository.ProfileRepository = (*PgProfileRepository)(nil)

func (r *PgProfileRepository) Kind() profile.Kind { return r.kind }

func (r *PgProfileRepository) FindByID(ctx context.Context, id string) (profile.Profile, error) {
	if r == nil || r.pool == nil {
		return profile.Profile{}, errors.New("PgProfileRepository: nil pool")
	}
	p := profile.Profile{Ref: profile.Ref{Kind: r.kind, ID: id}}
	var slug *string
	err := r.pool.QueryRow(ctx,
		"SELECT name, logo_url, slug FROM "+r.table+" WHERE id = $1",
		id,
	).Scan(&p.Name, &p.LogoURL, &slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return profile.Profile{}, profile.ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, err
	}
	if slug != nil {
		p.Slug = *slug
	}
	return p, nil
}
