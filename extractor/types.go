package extractor

import (
	"context"
	"encoding/json"
)

// RawPrediction is a single span emitted by the token-classification model
// for one text chunk. Offsets are character positions within that chunk.
type RawPrediction struct {
	EntityClass string  `json:"entity_group"`
	Text        string  `json:"word"`
	Confidence  float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

// MergedMention is one or more adjacent same-class predictions folded into a
// single logical entity mention.
type MergedMention struct {
	EntityClass string
	Text        string
	Confidence  float64
	Start       int
	End         int
}

// AggregateRecord is one row of the final entity report.
type AggregateRecord struct {
	EntityClass string `json:"class"`
	Description string `json:"description"`
	Entity      string `json:"entity"`
	Count       int    `json:"count"`
}

// Summary holds the derived totals for a report.
type Summary struct {
	UniqueClasses  int `json:"unique_classes"`
	UniqueEntities int `json:"unique_entities"`
	TotalMentions  int `json:"total_mentions"`
}

// Provider is the oracle contract: run named-entity recognition over a single
// chunk of text and return the raw span predictions in document order.
type Provider interface {
	Predict(ctx context.Context, chunk string) ([]RawPrediction, error)
}

// ModelConfig wraps the settings for the local ONNX oracle.
type ModelConfig struct {
	OrtDLL        string `json:"ortDll"`
	ModelPath     string `json:"modelPath"`
	TokenizerPath string `json:"tokenizerPath"`
	LabelsPath    string `json:"labelsPath"`
	MaxSeqLen     int    `json:"maxSeqLen"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// BackendConfig points a remote provider at a running extraction server.
type BackendConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Model         ModelConfig   `json:"model"`
	Server        ServerConfig  `json:"server"`
	Backend       BackendConfig `json:"backend"`
	MaxChunkChars int           `json:"maxChunkChars"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults. The chunk
// budget keeps every chunk inside the model's 512-token context window
// assuming a conservative 3-4 characters per token.
func (c *Config) ApplyDefaults() {
	if c.Model.MaxSeqLen == 0 {
		c.Model.MaxSeqLen = 512
	}
	if c.MaxChunkChars == 0 {
		c.MaxChunkChars = 1800
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Backend.URL == "" {
		c.Backend.URL = "http://localhost:8000"
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 60
	}
}
