package store

import (
	"context"
	"fmt"

	"mandir/internal/utils"
	"mandir/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pujaTableName = "mandir.pujas"

var pujaColumns = utils.StructTagValues(types.Puja{})

type PujaRepository struct {
	pool *pgxpool.Pool
}

func NewPujaRepository(pool *pgxpool.Pool) *PujaRepository {
	return &PujaRepository{pool: pool}
}

func (r *PujaRepository) ActivePujas(ctx context.Context) ([]*types.Puja, error) {

	query, args, err := psql().Select(pujaColumns...).From(pujaTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("display_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pujas query: %w", err)
	}

	var pujas = make([]*types.Puja, 0)
	if err := pgxscan.Select(ctx, r.pool, &pujas, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch pujas: %w", err)
	}

	return pujas, nil

}

func (r *PujaRepository) PujaByID(ctx context.Context, id string) (*types.Puja, error) {

	query, args, err := psql().Select(pujaColumns...).From(pujaTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate puja query: %w", err)
	}

	var puja = new(types.Puja)
	err = pgxscan.Get(ctx, r.pool, puja, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrPujaNotFound
	}

	return puja, nil

}

// UpsertPuja keeps the catalog in step with the seed definitions.
func (r *PujaRepository) UpsertPuja(ctx context.Context, puja *types.Puja) error {

	query := `
		INSERT INTO mandir.pujas (id, name, slug, description, suggested_donation, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			suggested_donation = EXCLUDED.suggested_donation,
			display_order = EXCLUDED.display_order,
			is_active = EXCLUDED.is_active,
			updated_at = now()`

	_, err := r.pool.Exec(ctx, query,
		puja.ID, puja.Name, puja.Slug, nullable(utils.PtrString(puja.Description)),
		puja.SuggestedDonation, puja.DisplayOrder, puja.IsActive)
	if err != nil {
		return fmt.Errorf("upsert puja %s: %w", puja.Slug, err)
	}

	return nil

}
