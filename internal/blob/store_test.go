package blob

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// exerciseStore runs the behaviour every driver must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := s.FileExists(ctx, "projects/p1/missing.json")
	if err != nil || ok {
		t.Fatalf("FileExists(missing) = %v, %v; want false, nil", ok, err)
	}
	if _, err := s.DownloadFile(ctx, "projects/p1/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DownloadFile(missing) error = %v, want ErrNotFound", err)
	}

	docs := map[string]string{
		"projects/p1/borelogs/b1/v1/csv-parse/002.json": `{"n":2}`,
		"projects/p1/borelogs/b1/v1/csv-parse/001.json": `{"n":1}`,
		"projects/p1/borelogs/b1/v1/stratum.json":       `{"layers":[]}`,
		"projects/p2/borelogs/b9/v1/stratum.json":       `{}`,
	}
	for k, v := range docs {
		if err := s.UploadFile(ctx, k, []byte(v), "application/json"); err != nil {
			t.Fatalf("UploadFile(%s) error = %v", k, err)
		}
	}

	ok, err = s.FileExists(ctx, "projects/p1/borelogs/b1/v1/stratum.json")
	if err != nil || !ok {
		t.Errorf("FileExists() = %v, %v; want true, nil", ok, err)
	}

	got, err := s.DownloadFile(ctx, "projects/p1/borelogs/b1/v1/csv-parse/001.json")
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	if string(got) != `{"n":1}` {
		t.Errorf("DownloadFile() = %s", got)
	}

	keys, err := s.ListFiles(ctx, "projects/p1/borelogs/b1/v1/csv-parse/", 0)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	want := []string{
		"projects/p1/borelogs/b1/v1/csv-parse/001.json",
		"projects/p1/borelogs/b1/v1/csv-parse/002.json",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("ListFiles() = %v, want %v", keys, want)
	}

	keys, err = s.ListFiles(ctx, "projects/", 2)
	if err != nil {
		t.Fatalf("ListFiles(limit) error = %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("ListFiles(limit 2) returned %d keys", len(keys))
	}

	if err := s.UploadFile(ctx, "projects/p1/borelogs/b1/v1/stratum.json", []byte(`{"v":2}`), ""); err != nil {
		t.Fatalf("UploadFile(overwrite) error = %v", err)
	}
	got, _ = s.DownloadFile(ctx, "projects/p1/borelogs/b1/v1/stratum.json")
	if string(got) != `{"v":2}` {
		t.Errorf("overwritten content = %s", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	if s.Driver() != DriverMemory {
		t.Errorf("Driver() = %s", s.Driver())
	}
	exerciseStore(t, s)
}

func TestMemoryStore_DownloadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_ = s.UploadFile(ctx, "k", []byte("abc"), "")
	b, _ := s.DownloadFile(ctx, "k")
	b[0] = 'x'
	again, _ := s.DownloadFile(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored data mutated through returned slice: %s", again)
	}
}

func TestFilesystemStore(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem() error = %v", err)
	}
	if s.Driver() != DriverFilesystem {
		t.Errorf("Driver() = %s", s.Driver())
	}
	exerciseStore(t, s)
}

func TestFilesystemStore_ListScopedToPrefix(t *testing.T) {
	root := t.TempDir()
	s, err := NewFilesystem(root)
	if err != nil {
		t.Fatalf("NewFilesystem() error = %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{
		"projects/p1/borelogs/b1/v1/csv-parse/001.json",
		"projects/p12/borelogs/b1/v1/stratum.json",
		"projects/p2/borelogs/b9/v1/stratum.json",
	} {
		if err := s.UploadFile(ctx, key, []byte(`{}`), ""); err != nil {
			t.Fatalf("UploadFile(%s) error = %v", key, err)
		}
	}

	tests := []struct {
		name      string
		prefix    string
		wantStart string
		wantOK    bool
		wantKeys  int
	}{
		{name: "whole store", prefix: "", wantStart: root, wantOK: true, wantKeys: 3},
		{name: "version directory", prefix: "projects/p1/borelogs/b1/v1/csv-parse/", wantStart: filepath.Join(root, "projects", "p1", "borelogs", "b1", "v1", "csv-parse"), wantOK: true, wantKeys: 1},
		{name: "partial segment", prefix: "projects/p1", wantStart: filepath.Join(root, "projects"), wantOK: true, wantKeys: 2},
		{name: "missing directory", prefix: "projects/p9/borelogs/", wantOK: false, wantKeys: 0},
		{name: "file as directory", prefix: "projects/p2/borelogs/b9/v1/stratum.json/", wantOK: false, wantKeys: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, ok := s.walkStart(tt.prefix)
			if ok != tt.wantOK || (ok && start != tt.wantStart) {
				t.Errorf("walkStart(%q) = %q, %v; want %q, %v", tt.prefix, start, ok, tt.wantStart, tt.wantOK)
			}
			keys, err := s.ListFiles(ctx, tt.prefix, 0)
			if err != nil {
				t.Fatalf("ListFiles(%q) error = %v", tt.prefix, err)
			}
			if len(keys) != tt.wantKeys {
				t.Errorf("ListFiles(%q) = %v, want %d keys", tt.prefix, keys, tt.wantKeys)
			}
		})
	}
}

func TestFilesystemStore_RejectsBadKeys(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem() error = %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "  ", "../escape.json", "/abs/path.json", "a/../../b"} {
		if err := s.UploadFile(ctx, key, []byte("x"), ""); err == nil {
			t.Errorf("UploadFile(%q) succeeded, want error", key)
		}
		if _, err := s.FileExists(ctx, key); err == nil {
			t.Errorf("FileExists(%q) succeeded, want error", key)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || s.Driver() != DriverMemory {
		t.Errorf("Open(memory) = %v, %v", s, err)
	}

	s, err = Open(ctx, Config{Root: t.TempDir()})
	if err != nil || s.Driver() != DriverFilesystem {
		t.Errorf("Open(default) = %v, %v", s, err)
	}

	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Error("Open(s3 without bucket) succeeded, want error")
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Error("Open(unknown driver) succeeded, want error")
	}
}
