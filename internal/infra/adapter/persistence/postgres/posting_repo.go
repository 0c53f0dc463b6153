package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"engjobs/internal/domain/entity"
	"engjobs/internal/observability/metrics"
	"engjobs/internal/repository"
)

// DBTX is the subset of database/sql the repositories use. Both *sql.DB and
// the circuit breaker wrapper satisfy it.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type PostingRepo struct {
	db DBTX
}

// observe times one repository operation for the db_query_duration metric.
func observe(operation string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQuery(operation, time.Since(start))
	}
}

func NewPostingRepo(db DBTX) repository.PostingRepository {
	return &PostingRepo{db: db}
}

func (repo *PostingRepo) ListRecent(ctx context.Context, source string, limit int) ([]*entity.Posting, error) {
	defer observe("list_recent")()
	query := `
SELECT id, title, company, location, url, date_posted, role_type, source, posted, created_at
FROM postings
ORDER BY date_posted DESC
LIMIT $1`
	args := []interface{}{limit}
	if source != "" {
		query = `
SELECT id, title, company, location, url, date_posted, role_type, source, posted, created_at
FROM postings
WHERE source = $1
ORDER BY date_posted DESC
LIMIT $2`
		args = []interface{}{source, limit}
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	postings := make([]*entity.Posting, 0, limit)
	for rows.Next() {
		var p entity.Posting
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.URL,
			&p.DatePosted, &p.RoleType, &p.Source, &p.Posted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		postings = append(postings, &p)
	}
	return postings, rows.Err()
}

func (repo *PostingRepo) Create(ctx context.Context, posting *entity.Posting) error {
	defer observe("insert_posting")()
	const query = `
INSERT INTO postings
       (identity_key, title, company, location, url, date_posted, role_type, source, posted)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		posting.IdentityKey(), posting.Title, posting.Company, posting.Location,
		posting.URL, posting.DatePosted, posting.RoleType, posting.Source, posting.Posted,
	).Scan(&posting.ID, &posting.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *PostingRepo) ExistsByIdentity(ctx context.Context, key string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM postings WHERE identity_key = $1)`
	var existsFlag bool
	err := repo.db.QueryRowContext(ctx, query, key).Scan(&existsFlag)
	if err != nil {
		return false, fmt.Errorf("ExistsByIdentity: %w", err)
	}
	return existsFlag, nil
}

// ExistsByIdentityBatch checks all keys in one round trip so a publish run
// does not issue one query per posting.
func (repo *PostingRepo) ExistsByIdentityBatch(ctx context.Context, keys []string) (map[string]bool, error) {
	if len(keys) == 0 {
		return make(map[string]bool), nil
	}

	defer observe("exists_batch")()
	const query = `SELECT identity_key FROM postings WHERE identity_key = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("ExistsByIdentityBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("ExistsByIdentityBatch: Scan: %w", err)
		}
		result[key] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByIdentityBatch: rows.Err: %w", err)
	}

	return result, nil
}

func (repo *PostingRepo) MarkPosted(ctx context.Context, id int64) error {
	defer observe("mark_posted")()
	const query = `UPDATE postings SET posted = TRUE WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("MarkPosted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkPosted: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *PostingRepo) Stats(ctx context.Context) (*repository.PostingStats, error) {
	defer observe("stats")()
	stats := &repository.PostingStats{}

	const totalsQuery = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE posted)
FROM postings`
	if err := repo.db.QueryRowContext(ctx, totalsQuery).
		Scan(&stats.Total, &stats.Posted); err != nil {
		return nil, fmt.Errorf("Stats: totals: %w", err)
	}

	const bySourceQuery = `
SELECT source, COUNT(*)
FROM postings
GROUP BY source
ORDER BY COUNT(*) DESC, source`
	rows, err := repo.db.QueryContext(ctx, bySourceQuery)
	if err != nil {
		return nil, fmt.Errorf("Stats: by source: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var sc repository.SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("Stats: Scan: %w", err)
		}
		stats.BySource = append(stats.BySource, sc)
	}
	return stats, rows.Err()
}
