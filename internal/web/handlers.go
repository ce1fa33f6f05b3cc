package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/borelog/internal/blob"
	"github.com/JonMunkholm/borelog/internal/core"
	"github.com/JonMunkholm/borelog/internal/history"
	"github.com/JonMunkholm/borelog/internal/stratum"
	"github.com/go-chi/chi/v5"
)

const (
	// multipartMemory is how much of a multipart upload is held in memory;
	// the rest spills to temporary files.
	multipartMemory = 8 << 20

	// formOverhead allows for multipart boundaries and part headers on top
	// of the file itself.
	formOverhead = 64 << 10

	// maxListLimit caps the limit query parameter of the imports listing.
	maxListLimit = 500
)

type healthResponse struct {
	Status  string                   `json:"status"`
	Storage blob.Driver              `json:"storage"`
	History bool                     `json:"history"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

// strataResponse is a stratum.Result flagged with whether any stored
// representation was found.
type strataResponse struct {
	Found bool `json:"found"`
	stratum.Result
}

type importsResponse struct {
	Imports []history.Entry `json:"imports"`
}

// handleHealth reports liveness plus import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Storage: s.service.StorageDriver(),
		History: s.service.HistoryEnabled(),
		Imports: s.service.ImportLimiterStatus(),
	})
}

// handleParse parses an export and returns the record without storing it.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	name, body, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		s.respondError(w, r, uploadError(err))
		return
	}

	rec, err := s.service.Parse(r.Context(), name, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleImport parses an export and stores it against one borehole-log
// version.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id, err := identityParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name, body, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer body.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Import(ctx, core.ImportRequest{
		Identity: id,
		FileName: name,
		Body:     body,
	})
	if err != nil {
		s.respondError(w, r, uploadError(err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleStrata returns the stratum data of one version. A version with no
// stored representation yet is not an error.
func (s *Server) handleStrata(w http.ResponseWriter, r *http.Request) {
	id, err := identityParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, found, err := s.service.Strata(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !found {
		res = stratum.Result{
			BorelogID: id.BorelogID,
			VersionNo: id.Version,
			ProjectID: id.ProjectID,
			Layers:    []stratum.Layer{},
		}
	}
	writeJSON(w, http.StatusOK, strataResponse{Found: found, Result: res})
}

// handleImports lists recent import attempts for one borehole log.
func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", history.DefaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := s.service.Imports(r.Context(),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "borelogID"),
		limit,
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importsResponse{Imports: entries})
}

// readUpload returns the uploaded file name and body. Multipart requests
// carry the export in the "file" field; any other content type is taken as
// the raw export, named by the filename query parameter or X-File-Name.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, io.ReadCloser, error) {
	if limit := s.cfg.Import.MaxFileSize; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("filename")
		if name == "" {
			name = r.Header.Get("X-File-Name")
		}
		return name, r.Body, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, formError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, formError(err)
	}
	return header.Filename, file, nil
}

// uploadError translates request body failures into core errors so they map
// to the right code and status.
func uploadError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		if errors.Is(err, core.ErrFileTooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
	case errors.Is(err, http.ErrMissingFile):
		return core.ErrNoFile
	default:
		return err
	}
}

// formError is uploadError for multipart parsing, where anything else means
// the form itself is malformed.
func formError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) || errors.Is(err, http.ErrMissingFile) {
		return uploadError(err)
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidUpload, err)
}

// identityParam reads the borehole-log version named by the request path.
// Validation beyond the version number is left to the service.
func identityParam(r *http.Request) (stratum.Identity, error) {
	id := stratum.Identity{
		ProjectID: chi.URLParam(r, "projectID"),
		BorelogID: chi.URLParam(r, "borelogID"),
	}
	raw := chi.URLParam(r, "version")
	v, err := strconv.Atoi(raw)
	if err != nil {
		return id, fmt.Errorf("%w: version %q is not a number", core.ErrInvalidIdentity, raw)
	}
	id.Version = v
	return id, nil
}

// parseIntParam parses a positive integer query parameter with a default
// value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
