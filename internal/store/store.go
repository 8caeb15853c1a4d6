// Package store keeps the saved documents and the business profile in
// durable key-value slots.
//
// The saved documents live as one JSON array under one key. Every mutation
// reads the whole array, changes it and writes the whole array back. Two
// processes writing the same key lose updates (last writer wins); a single
// Store serializes its own callers.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"billdocs/internal/document"
	"billdocs/internal/logger"
	"billdocs/internal/storage"
	"billdocs/pkg/models"
)

const (
	DefaultDocumentsKey = "saved_documents"

	unknownClient = "Unknown Client"
	unknownNumber = "XXX"
)

// Store is the collection of saved documents.
type Store struct {
	mu    sync.Mutex
	slot  storage.Slot
	key   string
	now   func() time.Time
	newID func() (string, error)
	log   zerolog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for dateCreated and dateUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

// New returns a Store that keeps its records under key in slot.
func New(slot storage.Slot, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultDocumentsKey
	}
	s := &Store{
		slot:  slot,
		key:   key,
		now:   time.Now,
		newID: newRecordID,
		log:   logger.WithComponent("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newRecordID returns a UUIDv7: time-ordered like a timestamp id,
// but unique even for calls within the same millisecond.
func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIDGeneration, err)
	}
	return id.String(), nil
}

// List returns all saved documents in insertion order. Missing or corrupt
// data yields an empty list.
func (s *Store) List(ctx context.Context) ([]models.SavedDocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, wrap("List", s.key, err)
	}
	return records, nil
}

// Get returns the record with id or ErrRecordNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.SavedDocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, wrap("Get", s.key, err)
	}
	for i := range records {
		if records[i].ID == id {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, wrap("Get", s.key, ErrRecordNotFound)
}

// Create appends a new record holding a deep copy of doc and returns its id.
func (s *Store) Create(ctx context.Context, doc models.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return "", wrap("Create", s.key, err)
	}

	id, err := s.newID()
	if err != nil {
		return "", wrap("Create", s.key, err)
	}
	for _, r := range records {
		if r.ID == id {
			return "", wrap("Create", s.key, fmt.Errorf("%w: duplicate id %s", ErrIDGeneration, id))
		}
	}

	now := s.now().UTC()
	rec := models.SavedDocumentRecord{ID: id, DateCreated: now}
	denormalize(&rec, doc, now)
	records = append(records, rec)

	if err := s.save(ctx, records); err != nil {
		return "", wrap("Create", s.key, err)
	}

	s.log.Info().
		Str("record_id", id).
		Str("document_type", string(rec.Type)).
		Str("document_number", rec.DocumentNumber).
		Msg("Saved document created")
	return id, nil
}

// Update replaces the document of record id. An unknown id is logged and
// otherwise ignored.
func (s *Store) Update(ctx context.Context, id string, doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return wrap("Update", s.key, err)
	}

	idx := indexOf(records, id)
	if idx < 0 {
		s.log.Warn().
			Err(ErrRecordNotFound).
			Str("record_id", id).
			Msg("Update of unknown saved document ignored")
		return nil
	}

	denormalize(&records[idx], doc, s.now().UTC())

	if err := s.save(ctx, records); err != nil {
		return wrap("Update", s.key, err)
	}

	s.log.Info().
		Str("record_id", id).
		Msg("Saved document updated")
	return nil
}

// Delete removes record id if present. The collection is rewritten either way.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return wrap("Delete", s.key, err)
	}

	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		s.log.Debug().
			Err(ErrRecordNotFound).
			Str("record_id", id).
			Msg("Delete of unknown saved document")
	}

	if err := s.save(ctx, kept); err != nil {
		return wrap("Delete", s.key, err)
	}
	return nil
}

// denormalize copies doc into rec and recomputes every derived list field.
// ID and DateCreated are left untouched.
func denormalize(rec *models.SavedDocumentRecord, doc models.Document, now time.Time) {
	snap := document.Snapshot(doc)

	rec.Type = snap.Document.Type
	rec.DocumentNumber = snap.Document.DocumentNumber
	if rec.DocumentNumber == "" {
		rec.DocumentNumber = unknownNumber
	}
	rec.ClientName = snap.Document.Client.Name
	if rec.ClientName == "" {
		rec.ClientName = unknownClient
	}
	rec.Total = snap.Totals.Total
	rec.DateUpdated = now
	rec.Document = snap.Document
}

func indexOf(records []models.SavedDocumentRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// load reads and decodes the collection. Callers hold s.mu.
func (s *Store) load(ctx context.Context) ([]models.SavedDocumentRecord, error) {
	raw, found, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return []models.SavedDocumentRecord{}, nil
	}

	var records []models.SavedDocumentRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.log.Warn().
			Err(fmt.Errorf("%w: %v", ErrCorrupt, err)).
			Str("key", s.key).
			Int("bytes", len(raw)).
			Msg("Saved documents unreadable, treating as empty")
		return []models.SavedDocumentRecord{}, nil
	}
	if records == nil {
		records = []models.SavedDocumentRecord{}
	}
	return records, nil
}

// save encodes and writes the whole collection. Callers hold s.mu.
func (s *Store) save(ctx context.Context, records []models.SavedDocumentRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode saved documents: %w", err)
	}
	return s.slot.Set(ctx, s.key, string(data))
}
