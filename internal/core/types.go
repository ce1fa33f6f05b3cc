package core

import (
	"context"
	"io"

	"github.com/JonMunkholm/borelog/internal/borelog"
	"github.com/JonMunkholm/borelog/internal/history"
	"github.com/JonMunkholm/borelog/internal/stratum"
)

// HistoryStore persists import attempts. *history.Store satisfies it.
type HistoryStore interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
	List(ctx context.Context, projectID, borelogID string, limit int) ([]history.Entry, error)
}

// ImportRequest is one export to import into a borehole-log version.
type ImportRequest struct {
	Identity stratum.Identity
	FileName string
	Body     io.Reader
}

// ImportResult describes a successful import.
type ImportResult struct {
	ImportID    string           `json:"import_id"`
	Identity    stratum.Identity `json:"identity"`
	DocumentKey string           `json:"document_key"`
	LayerCount  int              `json:"layer_count"`
	Record      *borelog.Record  `json:"record"`
}
