package stratum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/borelog/internal/blob"
	"github.com/JonMunkholm/borelog/internal/logging"
	"github.com/JonMunkholm/borelog/internal/metrics"
)

// Storage is the read side of the object store the adapter probes.
type Storage interface {
	FileExists(ctx context.Context, key string) (bool, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	ListFiles(ctx context.Context, prefix string, limit int) ([]string, error)
}

// candidate locates one stored representation. ok is false when it does not
// exist for the identity.
type candidate struct {
	source Source
	locate func(ctx context.Context, s Storage, id Identity) (key string, ok bool, err error)
}

// candidates are probed strictly in this order.
var candidates = []candidate{
	{SourceParse, locateLatestParse},
	{SourceVersion, locateKey(VersionKey)},
	{SourceLegacy, locateKey(LegacyKey)},
}

func locateKey(keyOf func(Identity) string) func(context.Context, Storage, Identity) (string, bool, error) {
	return func(ctx context.Context, s Storage, id Identity) (string, bool, error) {
		key := keyOf(id)
		ok, err := s.FileExists(ctx, key)
		return key, ok, err
	}
}

// locateLatestParse picks the last import-time document in key order. The
// listing is unbounded: stores return keys ascending, so any limit would cut
// off the newest documents.
func locateLatestParse(ctx context.Context, s Storage, id Identity) (string, bool, error) {
	keys, err := s.ListFiles(ctx, ParsePrefix(id), 0)
	if err != nil {
		return "", false, err
	}
	for i := len(keys) - 1; i >= 0; i-- {
		if strings.HasSuffix(keys[i], ".json") {
			return keys[i], true, nil
		}
	}
	return "", false, nil
}

// Adapter resolves stratum data for borehole-log versions. It holds no
// mutable state and is safe for concurrent use.
type Adapter struct {
	store   Storage
	metrics *metrics.Metrics
}

// NewAdapter returns an Adapter reading from store. m may be nil.
func NewAdapter(store Storage, m *metrics.Metrics) *Adapter {
	return &Adapter{store: store, metrics: m}
}

// Resolve probes the candidates one at a time and normalizes the first that
// can be read. found is false when no candidate exists, which is the normal
// state of a freshly created log. The only error returned is the context's.
func (a *Adapter) Resolve(ctx context.Context, id Identity) (Result, bool, error) {
	logger := logging.WithFields(ctx,
		"project_id", id.ProjectID,
		"borelog_id", id.BorelogID,
		"version", id.Version,
	)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, false, err
		}
		layers, key, err := a.probe(ctx, c, id)
		switch {
		case err == nil && key == "":
			logger.Debug("stratum candidate absent", "candidate", c.source)
			continue
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, false, ctxErr
			}
			logCandidateFailure(logger, c.source, key, err)
			a.metrics.ObserveProbeFailure(string(c.source))
			continue
		}

		logger.Debug("stratum resolved", "candidate", c.source, "key", key, "layers", len(layers))
		a.metrics.ObserveResolve(string(c.source))
		return Result{
			BorelogID: id.BorelogID,
			VersionNo: id.Version,
			ProjectID: id.ProjectID,
			Source:    c.source,
			Layers:    layers,
		}, true, nil
	}
	a.metrics.ObserveResolve("")
	return Result{}, false, nil
}

// probe reads and decodes one candidate. An empty key with a nil error means
// the candidate does not exist.
func (a *Adapter) probe(ctx context.Context, c candidate, id Identity) ([]Layer, string, error) {
	key, ok, err := c.locate(ctx, a.store, id)
	if err != nil {
		return nil, key, fmt.Errorf("locate: %w", err)
	}
	if !ok {
		return nil, "", nil
	}
	data, err := a.store.DownloadFile(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, key, fmt.Errorf("download: %w", err)
	}
	layers, err := decodeLayers(data)
	if err != nil {
		return nil, key, err
	}
	return layers, key, nil
}

func logCandidateFailure(logger *slog.Logger, source Source, key string, err error) {
	logger.Warn("stratum candidate unreadable, trying next",
		"candidate", source,
		"key", key,
		"error", err,
	)
}
