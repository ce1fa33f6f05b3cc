package stratum

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// VersionPrefix is the key prefix of everything stored for one version.
func VersionPrefix(id Identity) string {
	return fmt.Sprintf("projects/%s/borelogs/%s/v%d/", id.ProjectID, id.BorelogID, id.Version)
}

// ParsePrefix holds the documents written at import time, one per import.
func ParsePrefix(id Identity) string {
	return VersionPrefix(id) + "csv-parse/"
}

// ParseKey names the import-time document for an import started at t. Keys
// sort by time so the latest import lists last.
func ParseKey(id Identity, t time.Time, importID string) string {
	return ParsePrefix(id) + t.UTC().Format("20060102T150405.000000000Z") + "-" + importID + ".json"
}

// VersionKey is the per-version structured document.
func VersionKey(id Identity) string {
	return VersionPrefix(id) + "stratum.json"
}

// LegacyKey is the pre-versioning document, stored per borelog.
func LegacyKey(id Identity) string {
	return fmt.Sprintf("legacy/borelogs/%s/stratum-v%d.json", id.BorelogID, id.Version)
}

// Validate rejects identities that cannot form a storage key.
func (id Identity) Validate() error {
	for name, v := range map[string]string{"project id": id.ProjectID, "borelog id": id.BorelogID} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
		if strings.ContainsAny(v, "/\\") || strings.Contains(v, "..") || path.Clean(v) != v {
			return fmt.Errorf("invalid %s %q", name, v)
		}
	}
	if id.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", id.Version)
	}
	return nil
}
