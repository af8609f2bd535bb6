package entry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/jsnanigans/rowcast/pkg/rowcast"
)

// positionsFile is the document form of a positions file. A bare list of positions
// is accepted too.
type positionsFile struct {
	Positions []rowcast.Position `yaml:"positions" json:"positions"`
}

// LoadFile reads known positions from path. YAML and JSON (comments allowed) files are
// decoded by extension; anything else is parsed as bulk text.
func LoadFile(path string) ([]rowcast.Position, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions file: %w", err)
	}

	var positions []rowcast.Position
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		positions, err = decodeYAML(data)
	case ".json", ".jsonc":
		positions, err = decodeJSON(jsonc.ToJSON(data))
	default:
		return ParseBulk(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%s holds no positions: %w", filepath.Base(path), ErrMalformed)
	}
	return positions, nil
}

func decodeYAML(data []byte) ([]rowcast.Position, error) {
	var doc positionsFile
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc.Positions, nil
	}
	var list []rowcast.Position
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func decodeJSON(data []byte) ([]rowcast.Position, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []rowcast.Position
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var doc positionsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Positions, nil
}
