package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName matches the name offered for policy downloads.
const DefaultFileName = "clawshield-policy.json"

// Encode renders doc as indented JSON, or YAML when format is "yaml"/"yml".
func Encode(doc Document, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(doc)
	case "", "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown policy format %q", format)
	}
}

// Save writes doc to path, choosing YAML for .yaml/.yml and JSON otherwise.
func Save(path string, doc Document) error {
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	data, err := Encode(doc, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create policy dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write policy: %w", err)
	}
	return nil
}
