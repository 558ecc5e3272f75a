package store

import (
	"context"
	"fmt"
	"time"

	"mandir/internal/utils"
	"mandir/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionTableName = "mandir.submissions"

var submissionColumns = utils.StructTagValues(types.Submission{})

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// CreateSubmission inserts exactly one row and stamps the generated row id
// and timestamps onto sub. The caller supplies the transaction id; this
// insert must complete before any mirror or notification is attempted.
func (r *SubmissionRepository) CreateSubmission(ctx context.Context, sub *types.Submission) error {

	now := time.Now()
	sub.ID = utils.NanoID()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	subMap := utils.StructToMap(sub)

	query, args, err := psql().Insert(submissionTableName).SetMap(subMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert submission query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create submission")

}

// UpdateSyncStatus records the outcome of the background CMS mirror attempt.
func (r *SubmissionRepository) UpdateSyncStatus(ctx context.Context, submissionID, syncStatus string) error {

	query, args, err := psql().Update(submissionTableName).
		Set("sync_status", syncStatus).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": submissionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate sync status update for submission %s: %w", submissionID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to update sync status")

}

func (r *SubmissionRepository) SubmissionByTransactionID(ctx context.Context, transactionID string) (*types.Submission, error) {

	query, args, err := psql().Select(submissionColumns...).From(submissionTableName).
		Where(sq.Eq{"transaction_id": transactionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submission query: %w", err)
	}

	var sub = new(types.Submission)
	err = pgxscan.Get(ctx, r.pool, sub, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrSubmissionNotFound
	}

	return sub, nil

}

// Submissions lists recent submissions for the admin view, newest first.
func (r *SubmissionRepository) Submissions(ctx context.Context, filter types.SubmissionFilter) ([]*types.Submission, error) {

	builder := psql().Select(submissionColumns...).From(submissionTableName).
		OrderBy("created_at DESC")

	if filter.FormType != "" {
		builder = builder.Where(sq.Eq{"form_type": filter.FormType})
	}
	if filter.SyncStatus != "" {
		builder = builder.Where(sq.Eq{"sync_status": filter.SyncStatus})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submissions query: %w", err)
	}

	var subs = make([]*types.Submission, 0)
	if err := pgxscan.Select(ctx, r.pool, &subs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	return subs, nil

}

func (r *SubmissionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
