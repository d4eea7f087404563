package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"libraryapi/internal/audit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgx behavior the repo needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the same repo code runs standalone or inside a
// lending transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepo struct {
	db      DB
	timeout time.Duration
}

func NewPostgresRepo(db DB, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateCopy(ctx context.Context, c *Copy) error {
	const query = `
		INSERT INTO copies (id, catalog_isbn, borrowed, version, created_by, updated_by)
		VALUES (gen_random_uuid(), $1, false, 0, $2, $2)
		RETURNING id, borrowed, version, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	actor := audit.ActorFrom(ctx)
	return r.db.QueryRow(timeoutCtx, query, c.ISBN, actor).Scan(
		&c.ID, &c.Borrowed, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *PostgresRepo) GetCopy(ctx context.Context, id string) (Copy, error) {
	const query = `
		SELECT id, catalog_isbn, borrowed, version, created_at, updated_at
		FROM copies
		WHERE id = $1
		LIMIT 1
	`
	var c Copy
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&c.ID, &c.ISBN, &c.Borrowed, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Copy{}, ErrNotFound
		}
		return Copy{}, err
	}
	return c, nil
}

func (r *PostgresRepo) FindCopyWithCatalog(ctx context.Context, id string) (CopyWithCatalog, error) {
	const query = `
		SELECT c.id, c.catalog_isbn, c.borrowed, c.version, c.created_at, c.updated_at,
		       bc.title, bc.author
		FROM copies c
		JOIN book_catalog bc ON bc.isbn = c.catalog_isbn
		WHERE c.id = $1
		LIMIT 1
	`
	var cw CopyWithCatalog
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&cw.ID, &cw.ISBN, &cw.Borrowed, &cw.Version, &cw.CreatedAt, &cw.UpdatedAt,
		&cw.Title, &cw.Author,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CopyWithCatalog{}, ErrNotFound
		}
		return CopyWithCatalog{}, err
	}
	return cw, nil
}

// TryMarkBorrowed is the single synchronization point preventing two
// concurrent borrows of the same copy from both succeeding: the WHERE clause
// makes the predicate check and the write one conditional statement, and the
// row lock serializes racing callers.
func (r *PostgresRepo) TryMarkBorrowed(ctx context.Context, id string) (bool, error) {
	const query = `
		UPDATE copies
		SET borrowed = true, version = version + 1, updated_at = now(), updated_by = $2
		WHERE id = $1 AND borrowed = false
	`
	return r.conditionalFlip(ctx, query, id)
}

func (r *PostgresRepo) TryMarkReturned(ctx context.Context, id string) (bool, error) {
	const query = `
		UPDATE copies
		SET borrowed = false, version = version + 1, updated_at = now(), updated_by = $2
		WHERE id = $1 AND borrowed = true
	`
	return r.conditionalFlip(ctx, query, id)
}

func (r *PostgresRepo) conditionalFlip(ctx context.Context, query, id string) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id, audit.ActorFrom(ctx))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]CopyWithCatalog, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(bc.title ILIKE $%d OR bc.author ILIKE $%d OR bc.isbn ILIKE $%d)", argn, argn+1, argn+2))
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern, pattern)
		argn += 3
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	countSQL := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM copies c
		JOIN book_catalog bc ON bc.isbn = c.catalog_isbn
		%s`, where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT c.id, c.catalog_isbn, c.borrowed, c.version, c.created_at, c.updated_at,
		       bc.title, bc.author
		FROM copies c
		JOIN book_catalog bc ON bc.isbn = c.catalog_isbn
		%s
		ORDER BY bc.title ASC, c.created_at ASC
		LIMIT $%d OFFSET $%d`, where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []CopyWithCatalog
	for rows.Next() {
		var cw CopyWithCatalog
		if err := rows.Scan(
			&cw.ID, &cw.ISBN, &cw.Borrowed, &cw.Version, &cw.CreatedAt, &cw.UpdatedAt,
			&cw.Title, &cw.Author,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, cw)
	}
	return out, total, rows.Err()
}
