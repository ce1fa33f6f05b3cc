package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/borelog/internal/blob"
	"github.com/JonMunkholm/borelog/internal/borelog"
	"github.com/JonMunkholm/borelog/internal/config"
	"github.com/JonMunkholm/borelog/internal/history"
	"github.com/JonMunkholm/borelog/internal/logging"
	"github.com/JonMunkholm/borelog/internal/metrics"
	"github.com/JonMunkholm/borelog/internal/stratum"
	"github.com/google/uuid"
)

var (
	// ErrNoFile is returned when an import request carries no body.
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidIdentity wraps identity validation failures.
	ErrInvalidIdentity = errors.New("invalid borelog identity")

	// ErrHistoryDisabled is returned by Imports when no database is configured.
	ErrHistoryDisabled = errors.New("import history is disabled")
)

// historyWriteTimeout bounds the history insert that follows an import. It
// runs detached from the request so a cancelled import is still recorded.
const historyWriteTimeout = 5 * time.Second

// DefaultImportTimeout applies when the configured timeout is not positive.
const DefaultImportTimeout = 2 * time.Minute

// Service provides the borehole-log import operations.
type Service struct {
	store   blob.Store
	adapter *stratum.Adapter
	history HistoryStore
	metrics *metrics.Metrics
	limiter *ImportLimiter

	maxFileSize   int64
	importTimeout time.Duration
	now           func() time.Time
}

// NewService wires a Service. hist and m may be nil: without hist imports
// are not recorded, without m nothing is measured.
func NewService(store blob.Store, hist HistoryStore, m *metrics.Metrics, cfg config.ImportConfig) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultImportTimeout
	}
	return &Service{
		store:         store,
		adapter:       stratum.NewAdapter(store, m),
		history:       hist,
		metrics:       m,
		limiter:       NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		maxFileSize:   cfg.MaxFileSize,
		importTimeout: cfg.Timeout,
		now:           time.Now,
	}
}

// Parse decodes and parses an export without storing anything.
func (s *Service) Parse(ctx context.Context, name string, body []byte) (*borelog.Record, error) {
	text, err := Decode(name, bytes.NewReader(body), s.maxFileSize)
	if err != nil {
		return nil, err
	}
	return s.parse(ctx, text)
}

func (s *Service) parse(ctx context.Context, text string) (*borelog.Record, error) {
	start := time.Now()
	rec, err := borelog.Parse(text)
	switch {
	case errors.Is(err, borelog.ErrMissingMetadata):
		s.metrics.ObserveParse(metrics.OutcomeMissingMetadata, 0, time.Since(start))
		return nil, err
	case err != nil:
		s.metrics.ObserveParse(metrics.OutcomeError, 0, time.Since(start))
		return nil, err
	}
	s.metrics.ObserveParse(metrics.OutcomeOK, len(rec.Layers), time.Since(start))
	logging.FromContext(ctx).Debug("export parsed",
		"job_code", rec.Metadata.JobCode,
		"layers", len(rec.Layers),
		"remarks", len(rec.Remarks),
	)
	return rec, nil
}

// Import parses an export and stores it as the newest parse-origin document
// of req.Identity. Every attempt that gets a slot is recorded in history,
// successful or not.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if err := req.Identity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if req.Body == nil {
		return nil, ErrNoFile
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyImports) {
			s.metrics.ImportRejected()
		}
		return nil, err
	}
	defer s.limiter.Release()
	done := s.metrics.ImportStarted()

	importID := uuid.New().String()
	ctx = logging.WithImportID(ctx, importID)
	logger := logging.WithFields(ctx,
		"project_id", req.Identity.ProjectID,
		"borelog_id", req.Identity.BorelogID,
		"version", req.Identity.Version,
		"file", req.FileName,
	)
	logger.Info("import started")

	importCtx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	res, err := s.runImport(importCtx, importID, req)

	entry := history.Entry{
		ID:        importID,
		ProjectID: req.Identity.ProjectID,
		BorelogID: req.Identity.BorelogID,
		VersionNo: req.Identity.Version,
		FileName:  req.FileName,
		ClientIP:  ClientIPFromContext(ctx),
		UserAgent: UserAgentFromContext(ctx),
	}
	if err != nil {
		entry.Status = history.StatusFailed
		entry.Error = err.Error()
		done(metrics.StatusFailed)
		logger.Warn("import failed", "error", err)
	} else {
		entry.Status = history.StatusSucceeded
		entry.JobCode = res.Record.Metadata.JobCode
		entry.LayerCount = res.LayerCount
		entry.DocumentKey = res.DocumentKey
		done(metrics.StatusSucceeded)
		logger.Info("import completed", "layers", res.LayerCount, "key", res.DocumentKey)
	}
	s.recordHistory(ctx, entry)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) runImport(ctx context.Context, importID string, req ImportRequest) (*ImportResult, error) {
	text, err := Decode(req.FileName, req.Body, s.maxFileSize)
	if err != nil {
		return nil, err
	}
	rec, err := s.parse(ctx, text)
	if err != nil {
		return nil, err
	}

	parsedAt := s.now().UTC()
	doc := stratum.FromRecord(req.Identity, rec)
	doc.ImportID = importID
	doc.SourceFile = req.FileName
	doc.ParsedAt = parsedAt

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode parse document: %w", err)
	}
	key := stratum.ParseKey(req.Identity, parsedAt, importID)
	if err := s.store.UploadFile(ctx, key, data, "application/json"); err != nil {
		return nil, fmt.Errorf("store parse document: %w", err)
	}

	return &ImportResult{
		ImportID:    importID,
		Identity:    req.Identity,
		DocumentKey: key,
		LayerCount:  len(rec.Layers),
		Record:      rec,
	}, nil
}

// recordHistory writes e, logging rather than returning failures: the
// stored document is already authoritative.
func (s *Service) recordHistory(ctx context.Context, e history.Entry) {
	if s.history == nil {
		return
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()
	if _, err := s.history.Record(hctx, e); err != nil {
		logging.FromContext(ctx).Error("failed to record import history", "error", err)
	}
}

// Strata resolves the stratum data of one version. found is false when the
// version has none yet.
func (s *Service) Strata(ctx context.Context, id stratum.Identity) (stratum.Result, bool, error) {
	if err := id.Validate(); err != nil {
		return stratum.Result{}, false, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return s.adapter.Resolve(ctx, id)
}

// Imports lists recent import attempts for one borehole log, newest first.
func (s *Service) Imports(ctx context.Context, projectID, borelogID string, limit int) ([]history.Entry, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	id := stratum.Identity{ProjectID: projectID, BorelogID: borelogID, Version: 1}
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return s.history.List(ctx, projectID, borelogID, limit)
}

// HistoryEnabled reports whether import attempts are recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// ImportLimiterStatus returns the current import slot usage.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx ends. Used
// for graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// StorageDriver names the blob backend documents are written to.
func (s *Service) StorageDriver() blob.Driver {
	return s.store.Driver()
}
