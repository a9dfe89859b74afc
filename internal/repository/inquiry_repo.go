package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/tourdesk/internal/domain"
)

// MutateFunc edits the document in place and reports whether it changed.
// Returning an error aborts the mutation without persisting anything.
type MutateFunc func(doc *domain.Document) (changed bool, err error)

// InquiryRepository stores the single inquiry document.
type InquiryRepository interface {
	// Init creates an empty document when none exists yet.
	Init(ctx context.Context) error
	// Read returns the current document. A missing or corrupt document
	// reads as empty.
	Read(ctx context.Context) (*domain.Document, error)
	// Write replaces the whole document.
	Write(ctx context.Context, doc *domain.Document) error
	// Update runs fn inside an exclusive read-modify-write section.
	Update(ctx context.Context, fn MutateFunc) error
}

func decodeDocument(data []byte) (*domain.Document, error) {
	doc := domain.NewDocument()
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return domain.NewDocument(), fmt.Errorf("failed to unmarshal document: %w", err)
	}
	normalize(doc)
	return doc, nil
}

func encodeDocument(doc *domain.Document) ([]byte, error) {
	if doc.Inquiries == nil {
		doc.Inquiries = make([]domain.Inquiry, 0)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// normalize restores lastId >= max(id) for hand-edited documents.
func normalize(doc *domain.Document) {
	if doc.Inquiries == nil {
		doc.Inquiries = make([]domain.Inquiry, 0)
	}
	for _, inq := range doc.Inquiries {
		if inq.ID > doc.LastID {
			doc.LastID = inq.ID
		}
	}
}
