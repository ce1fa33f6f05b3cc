package stratum

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/borelog/internal/blob"
	"github.com/JonMunkholm/borelog/internal/borelog"
	"github.com/JonMunkholm/borelog/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var testID = Identity{ProjectID: "p1", BorelogID: "b1", Version: 2}

// faultyStore wraps a memory store and fails selected calls.
type faultyStore struct {
	*blob.Memory
	listErr     error
	downloadErr map[string]error
}

func (f *faultyStore) ListFiles(ctx context.Context, prefix string, limit int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Memory.ListFiles(ctx, prefix, limit)
}

func (f *faultyStore) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	if err := f.downloadErr[key]; err != nil {
		return nil, err
	}
	return f.Memory.DownloadFile(ctx, key)
}

func put(t *testing.T, s blob.Store, key, doc string) {
	t.Helper()
	if err := s.UploadFile(context.Background(), key, []byte(doc), "application/json"); err != nil {
		t.Fatalf("UploadFile(%s) error = %v", key, err)
	}
}

const versionDoc = `{"layers":[
	{"id":"v-2","layer_order":2,"description":"Sand","depth_from_m":1,"depth_to_m":2,"samples":[]},
	{"id":"v-1","layer_order":1,"description":"Clay","depth_from_m":0,"depth_to_m":1}
]}`

const legacyDoc = `[
	{"order": 7, "soil_description": "Gravel", "from_m": "3.0", "to_m": "4.5", "sample_events": [
		{"depth": 4.0, "sample_code": "D-9", "order": 2},
		{"depth_from": 3.0, "depth_to": 3.45, "spt_blows_1": 10, "spt_blows_2": 12, "spt_blows_3": "R", "order": 1}
	]},
	{"order": 3, "soil_description": "Topsoil", "from_m": 0, "to_m": 3, "layer_id": "L-legacy"}
]`

func TestResolve_NotFound(t *testing.T) {
	res, found, err := NewAdapter(blob.NewMemory(), nil).Resolve(context.Background(), testID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if found {
		t.Errorf("Resolve() found = true, result %+v", res)
	}
}

func TestResolve_FallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		docs map[string]string
		want Source
	}{
		{
			name: "parse document beats legacy",
			docs: map[string]string{
				ParsePrefix(testID) + "001.json": `{"layers":[]}`,
				LegacyKey(testID):                legacyDoc,
			},
			want: SourceParse,
		},
		{
			name: "version document beats legacy",
			docs: map[string]string{
				VersionKey(testID): versionDoc,
				LegacyKey(testID):  legacyDoc,
			},
			want: SourceVersion,
		},
		{
			name: "legacy only",
			docs: map[string]string{LegacyKey(testID): legacyDoc},
			want: SourceLegacy,
		},
		{
			name: "malformed parse document skipped",
			docs: map[string]string{
				ParsePrefix(testID) + "001.json": `{"layers": {"not": "a list"}}`,
				VersionKey(testID):               versionDoc,
			},
			want: SourceVersion,
		},
		{
			name: "truncated version document skipped",
			docs: map[string]string{
				VersionKey(testID): `{"layers":[{"id":`,
				LegacyKey(testID):  legacyDoc,
			},
			want: SourceLegacy,
		},
		{
			name: "non-json parse files ignored",
			docs: map[string]string{
				ParsePrefix(testID) + "upload.csv": "Project Name: X",
				LegacyKey(testID):                  legacyDoc,
			},
			want: SourceLegacy,
		},
		{
			name: "other version not used",
			docs: map[string]string{
				VersionKey(Identity{ProjectID: "p1", BorelogID: "b1", Version: 1}): versionDoc,
				LegacyKey(testID): legacyDoc,
			},
			want: SourceLegacy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blob.NewMemory()
			for k, v := range tt.docs {
				put(t, store, k, v)
			}
			res, found, err := NewAdapter(store, nil).Resolve(context.Background(), testID)
			if err != nil || !found {
				t.Fatalf("Resolve() = found %v, error %v", found, err)
			}
			if res.Source != tt.want {
				t.Errorf("Source = %s, want %s", res.Source, tt.want)
			}
			if res.ProjectID != "p1" || res.BorelogID != "b1" || res.VersionNo != 2 {
				t.Errorf("identity = %s/%s/%d", res.ProjectID, res.BorelogID, res.VersionNo)
			}
			if res.Layers == nil {
				t.Error("Layers = nil, want non-nil")
			}
		})
	}
}

func TestResolve_StorageFailuresSkipCandidate(t *testing.T) {
	store := &faultyStore{
		Memory:      blob.NewMemory(),
		listErr:     errors.New("connection reset"),
		downloadErr: map[string]error{VersionKey(testID): errors.New("timeout")},
	}
	put(t, store, VersionKey(testID), versionDoc)
	put(t, store, LegacyKey(testID), legacyDoc)

	reg := prometheus.NewRegistry()
	res, found, err := NewAdapter(store, metrics.NewWithRegistry(reg)).Resolve(context.Background(), testID)
	if err != nil || !found {
		t.Fatalf("Resolve() = found %v, error %v", found, err)
	}
	if res.Source != SourceLegacy {
		t.Errorf("Source = %s, want %s", res.Source, SourceLegacy)
	}

	const want = `
# HELP borelog_stratum_probe_failures_total Candidates skipped because they could not be read or decoded.
# TYPE borelog_stratum_probe_failures_total counter
borelog_stratum_probe_failures_total{source="csv_parse"} 1
borelog_stratum_probe_failures_total{source="version"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "borelog_stratum_probe_failures_total"); err != nil {
		t.Error(err)
	}
}

func TestResolve_LatestParseDocument(t *testing.T) {
	store := blob.NewMemory()
	older := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	put(t, store, ParseKey(testID, older, "a"), `{"layers":[{"description":"old","depth_from":0,"depth_to":1}]}`)
	put(t, store, ParseKey(testID, older.Add(time.Hour), "b"), `{"layers":[{"description":"new","depth_from":0,"depth_to":1}]}`)

	res, _, err := NewAdapter(store, nil).Resolve(context.Background(), testID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Layers) != 1 || res.Layers[0].Description != "new" {
		t.Errorf("Layers = %+v, want the latest import", res.Layers)
	}
}

func TestResolve_ContextCanceled(t *testing.T) {
	store := blob.NewMemory()
	put(t, store, LegacyKey(testID), legacyDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found, err := NewAdapter(store, nil).Resolve(ctx, testID)
	if !errors.Is(err, context.Canceled) || found {
		t.Errorf("Resolve() = found %v, error %v; want context.Canceled", found, err)
	}
}

func TestResolve_LegacyNormalized(t *testing.T) {
	store := blob.NewMemory()
	put(t, store, LegacyKey(testID), legacyDoc)

	res, _, err := NewAdapter(store, nil).Resolve(context.Background(), testID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Layers) != 2 {
		t.Fatalf("Layers = %d, want 2", len(res.Layers))
	}

	top, gravel := res.Layers[0], res.Layers[1]
	if top.Description != "Topsoil" || top.ID != "L-legacy" || top.LayerOrder != 1 {
		t.Errorf("layer 1 = %q id %q order %d", top.Description, top.ID, top.LayerOrder)
	}
	if top.Samples == nil || len(top.Samples) != 0 {
		t.Errorf("layer 1 samples = %#v, want empty", top.Samples)
	}
	if gravel.ID != "layer-2" || gravel.LayerOrder != 2 {
		t.Errorf("layer 2 id %q order %d", gravel.ID, gravel.LayerOrder)
	}
	if gravel.DepthFromM == nil || *gravel.DepthFromM != 3 || gravel.DepthToM == nil || *gravel.DepthToM != 4.5 {
		t.Errorf("layer 2 depth = %v-%v", gravel.DepthFromM, gravel.DepthToM)
	}
	if len(gravel.Samples) != 2 {
		t.Fatalf("layer 2 samples = %d, want 2", len(gravel.Samples))
	}

	spt, ds := gravel.Samples[0], gravel.Samples[1]
	if spt.ID != "sample-2-1" || spt.SampleOrder != 1 || spt.SampleType != borelog.SampleTypeSPT || spt.DepthMode != DepthRange {
		t.Errorf("sample 1 = %+v", spt)
	}
	if spt.SPT15cm3.Text != "R" || spt.SPT15cm1.Value == nil || *spt.SPT15cm1.Value != 10 {
		t.Errorf("sample 1 blows = %+v %+v", spt.SPT15cm1, spt.SPT15cm3)
	}
	if ds.ID != "sample-2-2" || ds.SampleType != borelog.SampleTypeDisturbed || ds.DepthMode != DepthSingle {
		t.Errorf("sample 2 = %+v", ds)
	}
	if ds.DepthSingleM == nil || *ds.DepthSingleM != 4 || ds.DepthFromM != nil || ds.DepthToM != nil {
		t.Errorf("sample 2 depths = %v %v %v", ds.DepthSingleM, ds.DepthFromM, ds.DepthToM)
	}
}

func TestResolve_ParseDocumentRoundTrip(t *testing.T) {
	rec, err := borelog.Parse(strings.Join([]string{
		"Project Name: Harbour Road",
		"Job Code: HR-1",
		"Layer Details",
		"Clay 0.00-1.50 m",
		"Sample ID: S/D-1",
		"Sample Depth: 1.00-1.45 m",
		"SPT Blows: 3, 4, 5",
		`"Sand, fine",1.50,3.00,1.50,U-2,2.00`,
		"End of Log",
	}, "\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	doc := FromRecord(testID, rec)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	store := blob.NewMemory()
	put(t, store, ParseKey(testID, time.Now(), "imp"), string(data))

	res, found, err := NewAdapter(store, nil).Resolve(context.Background(), testID)
	if err != nil || !found {
		t.Fatalf("Resolve() = found %v, error %v", found, err)
	}
	if res.Source != SourceParse || len(res.Layers) != 2 {
		t.Fatalf("Resolve() = %s with %d layers", res.Source, len(res.Layers))
	}

	clay := res.Layers[0]
	if clay.ID != "layer-1" || clay.Description != "Clay" || clay.ThicknessM == nil || *clay.ThicknessM != 1.5 {
		t.Errorf("layer 1 = %+v", clay)
	}
	if len(clay.Samples) != 1 {
		t.Fatalf("layer 1 samples = %d", len(clay.Samples))
	}
	s := clay.Samples[0]
	if s.ID != "sample-1-1" || s.SampleType != borelog.SampleTypeSPT || s.DepthMode != DepthRange {
		t.Errorf("layer 1 sample = %+v", s)
	}
	if s.DepthFromM == nil || *s.DepthFromM != 1 || s.DepthToM == nil || *s.DepthToM != 1.45 {
		t.Errorf("layer 1 sample depth = %v-%v", s.DepthFromM, s.DepthToM)
	}
	if s.NValue.Value == nil || *s.NValue.Value != 9 {
		t.Errorf("layer 1 n-value = %+v", s.NValue)
	}

	sand := res.Layers[1]
	if sand.Description != "Sand, fine" || len(sand.Samples) != 1 {
		t.Fatalf("layer 2 = %+v", sand)
	}
	if u := sand.Samples[0]; u.SampleType != borelog.SampleTypeUndisturbed || u.DepthMode != DepthSingle ||
		u.DepthSingleM == nil || *u.DepthSingleM != 2 {
		t.Errorf("layer 2 sample = %+v", u)
	}
}

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		id      Identity
		wantErr bool
	}{
		{Identity{"p", "b", 1}, false},
		{Identity{"", "b", 1}, true},
		{Identity{"p", " ", 1}, true},
		{Identity{"p", "b", 0}, true},
		{Identity{"p/q", "b", 1}, true},
		{Identity{"p", "..", 1}, true},
	}
	for _, tt := range tests {
		if err := tt.id.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestKeys(t *testing.T) {
	if got := VersionKey(testID); got != "projects/p1/borelogs/b1/v2/stratum.json" {
		t.Errorf("VersionKey() = %s", got)
	}
	if got := LegacyKey(testID); got != "legacy/borelogs/b1/stratum-v2.json" {
		t.Errorf("LegacyKey() = %s", got)
	}
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	if got := ParseKey(testID, at, "x"); got != "projects/p1/borelogs/b1/v2/csv-parse/20240506T070809.000000000Z-x.json" {
		t.Errorf("ParseKey() = %s", got)
	}
}
