package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS inquiry_documents (
	name       text PRIMARY KEY,
	body       jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// PGInquiryRepository keeps the document as one jsonb row. Unlike the file
// store, connection and query failures are reported instead of read as empty,
// so a database outage cannot wipe the stored inquiries on the next write.
type PGInquiryRepository struct {
	mu   sync.Mutex
	db   *pgxpool.Pool
	name string
	log  *logger.Logger
}

func NewPGInquiryRepository(db *pgxpool.Pool, name string, log *logger.Logger) *PGInquiryRepository {
	if log == nil {
		log = logger.Nop()
	}
	if name == "" {
		name = "inquiries"
	}
	return &PGInquiryRepository{db: db, name: name, log: log.Component("pg_store")}
}

func (r *PGInquiryRepository) Init(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("failed to create inquiry_documents: %w", err)
	}

	data, err := encodeDocument(domain.NewDocument())
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO inquiry_documents (name, body) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, r.name, data)
	if err != nil {
		return fmt.Errorf("failed to seed inquiry document: %w", err)
	}
	return nil
}

func (r *PGInquiryRepository) Read(ctx context.Context) (*domain.Document, error) {
	return r.load(ctx, r.db)
}

func (r *PGInquiryRepository) Write(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, r.db, doc)
}

// Update serializes writers in-process with a mutex and across processes
// with a row lock.
func (r *PGInquiryRepository) Update(ctx context.Context, fn MutateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	doc, err := r.loadForUpdate(ctx, tx)
	if err != nil {
		return err
	}

	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	if err := r.save(ctx, tx, doc); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *PGInquiryRepository) load(ctx context.Context, q querier) (*domain.Document, error) {
	return r.scan(q.QueryRow(ctx, `SELECT body FROM inquiry_documents WHERE name = $1`, r.name))
}

func (r *PGInquiryRepository) loadForUpdate(ctx context.Context, q querier) (*domain.Document, error) {
	return r.scan(q.QueryRow(ctx, `SELECT body FROM inquiry_documents WHERE name = $1 FOR UPDATE`, r.name))
}

func (r *PGInquiryRepository) scan(row pgx.Row) (*domain.Document, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read inquiry document: %w", err)
	}

	doc, err := decodeDocument(body)
	if err != nil {
		r.log.Warn().Err(err).Str("name", r.name).Msg("inquiry document corrupt, starting empty")
	}
	return doc, nil
}

func (r *PGInquiryRepository) save(ctx context.Context, q querier, doc *domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO inquiry_documents (name, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`, r.name, data)
	if err != nil {
		return fmt.Errorf("failed to write inquiry document: %w", err)
	}
	return nil
}

var _ InquiryRepository = (*PGInquiryRepository)(nil)
