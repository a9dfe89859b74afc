package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/logger"
)

type FileInquiryRepository struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

func NewFileInquiryRepository(path string, log *logger.Logger) *FileInquiryRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &FileInquiryRepository{path: path, log: log.Component("file_store")}
}

func (r *FileInquiryRepository) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", r.path, err)
	}

	r.log.Info().Str("path", r.path).Msg("creating empty inquiry document")
	return r.save(domain.NewDocument())
}

func (r *FileInquiryRepository) Read(ctx context.Context) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(), nil
}

func (r *FileInquiryRepository) Write(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(doc)
}

func (r *FileInquiryRepository) Update(ctx context.Context, fn MutateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.load()
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return r.save(doc)
}

// load never fails: an unreadable or corrupt file reads as an empty document.
func (r *FileInquiryRepository) load() *domain.Document {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.log.Warn().Err(err).Str("path", r.path).Msg("inquiry document unreadable, starting empty")
		}
		return domain.NewDocument()
	}

	doc, err := decodeDocument(data)
	if err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Msg("inquiry document corrupt, starting empty")
	}
	return doc
}

// save writes to a temp file in the target directory and renames it over
// the document so a crash never leaves a truncated file behind.
func (r *FileInquiryRepository) save(doc *domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

var _ InquiryRepository = (*FileInquiryRepository)(nil)
