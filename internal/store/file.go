package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a dataset from a YAML or JSON file. JSON files exported
// from the dashboard (camelCase keys) are detected and routed through
// ImportDashboard.
func LoadFile(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read data file: %w", err)
	}

	var raw RawDataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Dataset{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if IsDashboardExport(data) {
			ds, err := ImportDashboard(data)
			if err != nil {
				return Dataset{}, fmt.Errorf("import %s: %w", path, err)
			}
			return ds, nil
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return Dataset{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Dataset{}, fmt.Errorf("unsupported data file extension %q (use .yaml, .yml or .json)", filepath.Ext(path))
	}

	ds, err := raw.Dataset()
	if err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// WriteFile writes a raw dataset as YAML or JSON depending on the extension.
func WriteFile(path string, raw RawDataset) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(raw)
	case ".json":
		data, err = json.MarshalIndent(raw, "", "  ")
	default:
		return fmt.Errorf("unsupported data file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
