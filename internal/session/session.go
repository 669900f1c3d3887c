// Package session holds the operator's working state: the current batch of
// contacts, the selection, the message template and the attachment reference.
// It is the only caller of the dispatch engine and owns the token that keeps
// a second dispatch (or a re-ingestion) from starting while one is running.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"whatsapp-bulk-sender/internal/contact"
	"whatsapp-bulk-sender/internal/dispatch"
	"whatsapp-bulk-sender/internal/render"
	"whatsapp-bulk-sender/internal/selection"
	"whatsapp-bulk-sender/pkg/models"
)

var (
	ErrBusy           = errors.New("another dispatch or import is in progress")
	ErrNoSelection    = errors.New("no contacts selected")
	ErrEmptyTemplate  = errors.New("message template is empty")
	ErrUnknownContact = errors.New("contact not in current batch")
)

type Source string

const (
	SourceNone   Source = ""
	SourceRemote Source = "remote"
	SourceCSV    Source = "csv"
)

// Fetcher loads eligible contacts from the remote store.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Contact, error)
}

// Runner executes one dispatch job.
type Runner interface {
	Run(ctx context.Context, job dispatch.Job) (dispatch.Summary, error)
}

type Session struct {
	fetcher Fetcher
	csv     *contact.CSVIngestor
	runner  Runner
	log     zerolog.Logger

	mu         sync.RWMutex
	batch      []models.Contact
	source     Source
	template   string
	attachment string
	last       *dispatch.Summary

	selection *selection.Set
	// running is held by whichever ingestion or dispatch is in flight.
	running atomic.Bool
	// bgJob and bgCancel are set only while a Start job holds the token.
	bgJob    string
	bgCancel context.CancelFunc
}

func New(fetcher Fetcher, csv *contact.CSVIngestor, runner Runner, log zerolog.Logger) *Session {
	return &Session{
		fetcher:   fetcher,
		csv:       csv,
		runner:    runner,
		log:       log.With().Str("component", "session").Logger(),
		batch:     []models.Contact{},
		selection: selection.New(),
	}
}

// --- Ingestion ---

// LoadRemote replaces the batch with the eligible contacts from the remote
// store. On failure the batch is cleared and the returned notice explains it.
func (s *Session) LoadRemote(ctx context.Context) (models.Notice, error) {
	if !s.running.CompareAndSwap(false, true) {
		return busyNotice(), ErrBusy
	}
	defer s.running.Store(false)

	contacts, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.replace(nil, SourceRemote)
		return models.Notice{
			Title:       "Failed to load contacts",
			Description: "Could not fetch contacts from database. Please try again.",
			Variant:     "destructive",
		}, err
	}

	s.replace(contacts, SourceRemote)
	return models.Notice{
		Title:       "Contacts loaded",
		Description: fmt.Sprintf("Loaded %d eligible contacts.", len(contacts)),
	}, nil
}

// ImportCSV replaces the batch with the contacts parsed from an uploaded file.
// On failure the previous batch is kept.
func (s *Session) ImportCSV(filename string, r io.Reader) (models.Notice, error) {
	if !s.running.CompareAndSwap(false, true) {
		return busyNotice(), ErrBusy
	}
	defer s.running.Store(false)

	contacts, err := s.csv.ParseFile(filename, r)
	if err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("csv import failed")
		return models.Notice{
			Title:       "Import failed",
			Description: "Could not parse CSV file. Please check the format.",
			Variant:     "destructive",
		}, err
	}

	s.replace(contacts, SourceCSV)
	return models.Notice{
		Title:       "CSV imported",
		Description: fmt.Sprintf("Successfully loaded %d contacts.", len(contacts)),
	}, nil
}

func (s *Session) replace(contacts []models.Contact, src Source) {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	ids := make([]string, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}

	s.mu.Lock()
	s.batch = contacts
	s.source = src
	s.selection.Replace(ids)
	s.mu.Unlock()

	s.log.Info().Str("source", string(src)).Int("contacts", len(contacts)).Msg("batch replaced")
}

// Contacts returns a copy of the current batch.
func (s *Session) Contacts() ([]models.Contact, Source) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Contact, len(s.batch))
	copy(out, s.batch)
	return out, s.source
}

// --- Selection ---

func (s *Session) SelectAll() { s.selection.SelectAll() }

func (s *Session) ClearSelection() { s.selection.Clear() }

func (s *Session) SelectedIDs() []string { return s.selection.IDs() }

func (s *Session) Toggle(id string, included bool) error {
	if !s.selection.Toggle(id, included) {
		return fmt.Errorf("%w: %s", ErrUnknownContact, id)
	}
	return nil
}

// --- Template and attachment ---

func (s *Session) SetTemplate(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = text
}

func (s *Session) Template() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// SetAttachment stores an already-resolved attachment reference. Empty clears it.
func (s *Session) SetAttachment(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachment = ref
}

func (s *Session) Attachment() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attachment
}

func (s *Session) Preview() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return render.Preview(s.template, s.attachment)
}

// --- Dispatch ---

func (s *Session) Running() bool { return s.running.Load() }

// LastSummary returns the summary of the most recent finished dispatch.
func (s *Session) LastSummary() (dispatch.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return dispatch.Summary{}, false
	}
	return *s.last, true
}

// snapshot builds the job from the selection and template as they are now.
func (s *Session) snapshot() (dispatch.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() (dispatch.Job, error) {
	if strings.TrimSpace(s.template) == "" {
		return dispatch.Job{}, ErrEmptyTemplate
	}
	picked := make([]models.Contact, 0, s.selection.Len())
	for _, c := range s.batch {
		if s.selection.Contains(c.ID) {
			picked = append(picked, c)
		}
	}
	if len(picked) == 0 {
		return dispatch.Job{}, ErrNoSelection
	}
	return dispatch.Job{
		ID:            uuid.NewString(),
		Contacts:      picked,
		Template:      s.template,
		AttachmentRef: s.attachment,
	}, nil
}

// Dispatch runs a job over the current selection on the calling goroutine.
func (s *Session) Dispatch(ctx context.Context, onProgress dispatch.ProgressFunc) (dispatch.Summary, models.Notice, error) {
	job, err := s.acquire()
	if err != nil {
		return dispatch.Summary{}, preconditionNotice(err), err
	}
	job.OnProgress = onProgress
	sum, err := s.run(ctx, job)
	return sum, outcomeNotice(sum, err), err
}

// Start validates and snapshots the job, then runs it in the background until
// it finishes, ctx is done, or Cancel is called. It fails fast with ErrBusy
// when a dispatch or an ingestion is already in flight.
func (s *Session) Start(ctx context.Context) (string, models.Notice, error) {
	s.mu.Lock()
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return "", busyNotice(), ErrBusy
	}
	job, err := s.snapshotLocked()
	if err != nil {
		s.running.Store(false)
		s.mu.Unlock()
		return "", preconditionNotice(err), err
	}
	ctx, cancel := context.WithCancel(ctx)
	s.bgJob, s.bgCancel = job.ID, cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		_, _ = s.run(ctx, job)
	}()
	return job.ID, models.Notice{
		Title:       "Sending started",
		Description: fmt.Sprintf("Sending to %d contacts.", len(job.Contacts)),
	}, nil
}

// Cancel stops the background dispatch started by Start at its next
// suspension point. It reports false when no such job is running, including
// while a synchronous Dispatch or an ingestion holds the token.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	cancel := s.bgCancel
	s.bgCancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

func (s *Session) acquire() (dispatch.Job, error) {
	if !s.running.CompareAndSwap(false, true) {
		return dispatch.Job{}, ErrBusy
	}
	job, err := s.snapshot()
	if err != nil {
		s.running.Store(false)
		return dispatch.Job{}, err
	}
	return job, nil
}

func (s *Session) run(ctx context.Context, job dispatch.Job) (dispatch.Summary, error) {
	defer s.running.Store(false)

	sum, err := s.runner.Run(ctx, job)
	s.mu.Lock()
	s.last = &sum
	// cleared before the token is released so Cancel never sees a stale job
	if s.bgJob == job.ID {
		s.bgJob, s.bgCancel = "", nil
	}
	s.mu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Str("job", job.ID).Int("sent", sum.Sent).Msg("dispatch failed")
	}
	return sum, err
}
