package borelog

import "fmt"

// Parse converts raw export text into a Record. The only error it returns
// wraps ErrMissingMetadata; malformed layer tables produce fewer (or no)
// layers instead of failing.
func Parse(text string) (*Record, error) {
	lines := Lines(text)

	meta, err := ScanMetadata(lines)
	if err != nil {
		return nil, fmt.Errorf("parse borelog: %w", err)
	}

	layers := make([]SoilLayer, 0)
	for _, cluster := range Segment(lines) {
		if layer, ok := ExtractLayer(cluster); ok {
			layers = append(layers, layer)
		}
	}

	return &Record{
		Metadata:    meta,
		Layers:      layers,
		Remarks:     ScanRemarks(lines),
		CoreQuality: ScanCoreQuality(lines),
	}, nil
}
