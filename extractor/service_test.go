package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider emits one MAL prediction at the start of every chunk, and
// fails for chunks containing the word FAIL.
type fakeProvider struct {
	calls []string
}

func (f *fakeProvider) Predict(_ context.Context, chunk string) ([]RawPrediction, error) {
	f.calls = append(f.calls, chunk)
	if strings.Contains(chunk, "FAIL") {
		return nil, errors.New("model exploded")
	}
	if strings.TrimSpace(chunk) == "" {
		return nil, nil
	}
	return []RawPrediction{
		{EntityClass: "MAL", Text: "Emotet", Confidence: 0.9, Start: 0, End: 6},
	}, nil
}

func newTestService(t *testing.T, provider Provider, maxChunkChars int) *Service {
	t.Helper()
	cfg := Config{MaxChunkChars: maxChunkChars}
	svc, err := NewService(provider, DefaultRegistry(), cfg, nil)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresProvider(t *testing.T) {
	_, err := NewService(nil, nil, Config{}, nil)
	assert.Error(t, err)
}

func TestServiceAnalyzeSingleChunk(t *testing.T) {
	svc := newTestService(t, &fakeProvider{}, 1800)
	report := svc.Analyze(context.Background(), "Emotet was seen again.", nil)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "Emotet", report.Records[0].Entity)
	assert.Equal(t, 1, report.Records[0].Count)
}

// Each chunk's spans are merged independently: the same near-zero offsets in
// consecutive chunks must yield one mention per chunk, never a cross-chunk
// fold.
func TestServiceAnalyzeMergesPerChunk(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(t, provider, 60)
	sentence := strings.Repeat("x", 40)
	text := sentence + ". " + sentence + ". " + sentence
	report := svc.Analyze(context.Background(), text, nil)

	require.Greater(t, len(provider.calls), 1)
	require.Len(t, report.Records, 1)
	assert.Equal(t, len(provider.calls), report.Records[0].Count)
}

func TestServiceAnalyzeToleratesChunkFailure(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(t, provider, 60)
	sentence := strings.Repeat("x", 40)
	text := sentence + ". FAIL" + strings.Repeat("y", 36) + ". " + sentence
	report := svc.Analyze(context.Background(), text, nil)

	require.Greater(t, len(provider.calls), 1)
	// The failed chunk contributes nothing; the rest still aggregates.
	require.Len(t, report.Records, 1)
	assert.Less(t, report.Records[0].Count, len(provider.calls))
	assert.Positive(t, report.Records[0].Count)
}

func TestServiceAnalyzeProgressCallback(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(t, provider, 60)
	sentence := strings.Repeat("x", 40)
	text := sentence + ". " + sentence

	var seen []int
	total := 0
	svc.Analyze(context.Background(), text, func(current, tot int) {
		seen = append(seen, current)
		total = tot
	})
	require.NotEmpty(t, seen)
	assert.Equal(t, len(provider.calls), total)
	assert.Equal(t, total, seen[len(seen)-1])
	for i, current := range seen {
		assert.Equal(t, i+1, current)
	}
}

func TestServiceExtractConcatenatesRaw(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(t, provider, 60)
	sentence := strings.Repeat("x", 40)
	raw := svc.Extract(context.Background(), sentence+". "+sentence, nil)
	assert.Len(t, raw, len(provider.calls))
}

func TestServiceConfigRoundTrip(t *testing.T) {
	svc := newTestService(t, &fakeProvider{}, 0)
	cfg := svc.Config()
	assert.Equal(t, 1800, cfg.MaxChunkChars)

	cfg.MaxChunkChars = 900
	svc.UpdateConfig(cfg)
	assert.Equal(t, 900, svc.Config().MaxChunkChars)
}
