package ner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureentity/extractor/extractor"
)

func TestRemotePredict(t *testing.T) {
	var gotBody extractRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/extract", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entities": []extractor.RawPrediction{
				{EntityClass: "MAL", Text: "Emotet", Confidence: 0.93, Start: 4, End: 10},
			},
		})
	}))
	defer ts.Close()

	remote := NewRemote(extractor.BackendConfig{URL: ts.URL, TimeoutSeconds: 5})
	preds, err := remote.Predict(context.Background(), "the Emotet loader")
	require.NoError(t, err)
	assert.Equal(t, "the Emotet loader", gotBody.Text)
	require.Len(t, preds, 1)
	assert.Equal(t, "MAL", preds[0].EntityClass)
	assert.Equal(t, "Emotet", preds[0].Text)
	assert.Equal(t, 4, preds[0].Start)
}

func TestRemotePredictServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer ts.Close()

	remote := NewRemote(extractor.BackendConfig{URL: ts.URL})
	_, err := remote.Predict(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRemotePredictContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"entities": []extractor.RawPrediction{}})
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	remote := NewRemote(extractor.BackendConfig{URL: ts.URL})
	_, err := remote.Predict(ctx, "text")
	assert.Error(t, err)
}

func TestRemoteHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	remote := NewRemote(extractor.BackendConfig{URL: ts.URL + "/"})
	assert.NoError(t, remote.Health(context.Background()))
}
