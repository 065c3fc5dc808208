package ner

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// modelConfig is the slice of the exported model configuration we need: the
// class index to IOB label mapping.
type modelConfig struct {
	ID2Label map[string]string `json:"id2label"`
}

// LoadLabels reads the id2label table from a model config.json. A flat
// {"0": "O", ...} file without the id2label wrapper is accepted too.
func LoadLabels(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	var cfg modelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	raw := cfg.ID2Label
	if len(raw) == 0 {
		if err := json.Unmarshal(data, &raw); err != nil || len(raw) == 0 {
			return nil, fmt.Errorf("no id2label table in %s", path)
		}
	}
	labels := make(map[int]string, len(raw))
	for id, label := range raw {
		idx, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("bad label id %q: %w", id, err)
		}
		labels[idx] = label
	}
	return labels, nil
}

// splitLabel separates an IOB label into its prefix and entity group.
// "B-MAL" yields ("B", "MAL"); a bare "MAL" counts as a continuation.
func splitLabel(label string) (prefix, group string) {
	if prefix, group, ok := strings.Cut(label, "-"); ok && (prefix == "B" || prefix == "I") {
		return prefix, group
	}
	return "I", label
}
