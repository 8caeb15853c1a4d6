// Package export runs the user-facing actions on a session: save, download
// as PDF and download as image.
//
// Every action persists the current document first. Downloads then render
// it and, once the file is produced, reset the session for the next
// document. Actions are serialized: a second action starts only after the
// first one, including its reset, has finished.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"billdocs/internal/document"
	"billdocs/internal/logger"
	"billdocs/internal/render"
	"billdocs/internal/session"
	"billdocs/pkg/models"
)

// Action names a user action.
type Action string

const (
	ActionSave   Action = "save"
	ActionPDF    Action = "pdf"
	ActionImage  Action = "image"
	ActionLoad   Action = "load"
	ActionDelete Action = "delete"
)

// DocumentStore is the persistence the orchestrator needs.
type DocumentStore interface {
	Create(ctx context.Context, doc models.Document) (string, error)
	Update(ctx context.Context, id string, doc models.Document) error
	Get(ctx context.Context, id string) (*models.SavedDocumentRecord, error)
	Delete(ctx context.Context, id string) error
}

// Result describes a completed action.
type Result struct {
	Action   Action
	RecordID string
	Output   *render.Output
	Reset    bool
}

// Orchestrator sequences persist, render and reset for each action.
type Orchestrator struct {
	mu        sync.Mutex
	store     DocumentStore
	renderers map[Action]render.Renderer
	now       func() time.Time
	log       zerolog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time used for the issue date after a reset.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithRenderer replaces the renderer used for action.
func WithRenderer(action Action, r render.Renderer) Option {
	return func(o *Orchestrator) { o.renderers[action] = r }
}

// New returns an Orchestrator with the PDF and image renderers built from opts.
func New(store DocumentStore, opts render.Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		store: store,
		renderers: map[Action]render.Renderer{
			ActionPDF:   render.NewPDFRenderer(opts),
			ActionImage: render.NewImageRenderer(opts),
		},
		now: time.Now,
		log: logger.WithComponent("orchestrator"),
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Save persists the session's document. The session is never reset.
func (o *Orchestrator) Save(ctx context.Context, s *session.Session) (*Result, error) {
	return o.Run(ctx, s, ActionSave)
}

// DownloadPDF persists the document, renders it as PDF and resets the session.
func (o *Orchestrator) DownloadPDF(ctx context.Context, s *session.Session) (*Result, error) {
	return o.Run(ctx, s, ActionPDF)
}

// DownloadImage persists the document, renders it as PNG and resets the session.
func (o *Orchestrator) DownloadImage(ctx context.Context, s *session.Session) (*Result, error) {
	return o.Run(ctx, s, ActionImage)
}

// Run performs action on s.
//
// A persist failure aborts the action before anything is rendered and
// leaves the session untouched. A render failure leaves the freshly
// persisted record in place and the session unreset, with the record id
// adopted so a retry updates rather than duplicates.
func (o *Orchestrator) Run(ctx context.Context, s *session.Session, action Action) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var renderer render.Renderer
	if action != ActionSave {
		r, ok := o.renderers[action]
		if !ok {
			return nil, &ExportError{Action: action, Stage: StageRender, Err: fmt.Errorf("%w: %s", ErrUnknownAction, action)}
		}
		renderer = r
	}

	log := o.log.With().Str("action", string(action)).Logger()
	snap := s.Snapshot()

	id, err := o.persist(ctx, s, snap.Document)
	if err != nil {
		log.Error().Err(err).Str("record_id", s.EditingDocumentID).Msg("Persisting document failed")
		return nil, &ExportError{Action: action, Stage: StagePersist, RecordID: s.EditingDocumentID, Err: err}
	}

	result := &Result{Action: action, RecordID: id}
	if renderer == nil {
		log.Info().Str("record_id", id).Msg("Document saved")
		return result, nil
	}

	out, err := renderer.Render(snap)
	if err != nil {
		log.Error().Err(err).Str("record_id", id).Msg("Rendering document failed, record kept")
		return nil, &ExportError{Action: action, Stage: StageRender, RecordID: id, Err: err}
	}

	s.Reset(o.now())
	result.Output = out
	result.Reset = true

	log.Info().
		Str("record_id", id).
		Str("file", out.Name).
		Int("bytes", len(out.Data)).
		Str("next_number", s.Document.DocumentNumber).
		Msg("Document exported")
	return result, nil
}

// persist updates the record being edited or creates a new one, adopting
// its id into the session right away.
func (o *Orchestrator) persist(ctx context.Context, s *session.Session, doc models.Document) (string, error) {
	if s.EditingDocumentID != "" {
		if err := o.store.Update(ctx, s.EditingDocumentID, doc); err != nil {
			return "", err
		}
		return s.EditingDocumentID, nil
	}

	id, err := o.store.Create(ctx, doc)
	if err != nil {
		return "", err
	}
	s.EditingDocumentID = id
	return id, nil
}

// Load puts saved record id into s for editing.
func (o *Orchestrator) Load(ctx context.Context, s *session.Session, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Get(ctx, id)
	if err != nil {
		return &ExportError{Action: ActionLoad, Stage: StageLoad, RecordID: id, Err: err}
	}
	s.LoadRecord(*rec)

	o.log.Info().
		Str("record_id", id).
		Str("document_type", string(rec.Type)).
		Str("document_number", rec.DocumentNumber).
		Msg("Saved document loaded for editing")
	return nil
}

// ExportRecord renders saved record id again. Nothing is persisted and no
// session is touched.
func (o *Orchestrator) ExportRecord(ctx context.Context, id string, action Action) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	renderer, ok := o.renderers[action]
	if !ok {
		return nil, &ExportError{Action: action, Stage: StageRender, RecordID: id, Err: fmt.Errorf("%w: %s", ErrUnknownAction, action)}
	}

	rec, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, &ExportError{Action: action, Stage: StageLoad, RecordID: id, Err: err}
	}

	out, err := renderer.Render(document.Snapshot(rec.Document))
	if err != nil {
		return nil, &ExportError{Action: action, Stage: StageRender, RecordID: id, Err: err}
	}

	o.log.Info().
		Str("action", string(action)).
		Str("record_id", id).
		Str("file", out.Name).
		Msg("Saved document exported")
	return &Result{Action: action, RecordID: id, Output: out}, nil
}

// Delete removes saved record id. If s is editing that record it becomes a
// new, unsaved document.
func (o *Orchestrator) Delete(ctx context.Context, s *session.Session, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.Delete(ctx, id); err != nil {
		return &ExportError{Action: ActionDelete, Stage: StagePersist, RecordID: id, Err: err}
	}
	if s != nil && s.EditingDocumentID == id {
		s.EditingDocumentID = ""
	}

	o.log.Info().Str("record_id", id).Msg("Saved document deleted")
	return nil
}
