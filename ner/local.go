package ner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"secureentity/extractor/extractor"
)

const outsideLabel = "O"

// Local runs the token-classification model in-process through ONNX Runtime.
// One Local owns one ORT session; Run is serialized because the session is
// not safe for concurrent use.
type Local struct {
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	labels  map[int]string
	maxSeq  int

	mu sync.Mutex
}

// NewLocal loads the tokenizer, the label table and the ONNX session.
// The labels path defaults to config.json next to the model file.
func NewLocal(cfg extractor.ModelConfig) (*Local, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if cfg.OrtDLL != "" {
		ort.SetSharedLibraryPath(cfg.OrtDLL)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	labelsPath := cfg.LabelsPath
	if labelsPath == "" {
		labelsPath = filepath.Join(filepath.Dir(cfg.ModelPath), "config.json")
	}
	labels, err := LoadLabels(labelsPath)
	if err != nil {
		return nil, err
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask"}, []string{"logits"}, nil)
	if err != nil {
		return nil, fmt.Errorf("open onnx session: %w", err)
	}
	maxSeq := cfg.MaxSeqLen
	if maxSeq <= 0 {
		maxSeq = 512
	}
	return &Local{tk: tk, session: session, labels: labels, maxSeq: maxSeq}, nil
}

// Close releases the ORT session.
func (l *Local) Close() error {
	if l == nil || l.session == nil {
		return nil
	}
	err := l.session.Destroy()
	l.session = nil
	return err
}

// Predict tokenizes one chunk, runs the model and reconstructs entity spans
// from the per-token IOB labels: consecutive tokens whose stripped label
// matches are grouped, a fresh B- tag starts a new span, and the span text is
// sliced from the chunk by the tokenizer's character offsets. The span
// confidence is the minimum token probability, matching the conservative
// policy the downstream merger applies.
func (l *Local) Predict(ctx context.Context, chunk string) ([]extractor.RawPrediction, error) {
	if l.session == nil {
		return nil, errors.New("session is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	en, err := l.tk.EncodeSingle(chunk, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize chunk: %w", err)
	}
	seqLen := len(en.Ids)
	if seqLen > l.maxSeq {
		seqLen = l.maxSeq
	}
	if seqLen == 0 {
		return nil, nil
	}

	ids := make([]int64, seqLen)
	mask := make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		ids[i] = int64(en.Ids[i])
		mask[i] = int64(en.AttentionMask[i])
	}

	logits, shape, err := l.run(ids, mask)
	if err != nil {
		return nil, err
	}
	if len(shape) != 3 || int(shape[1]) != seqLen {
		return nil, fmt.Errorf("unexpected logits shape %v", shape)
	}
	numLabels := int(shape[2])

	var preds []extractor.RawPrediction
	var open *extractor.RawPrediction
	flush := func() {
		if open != nil {
			preds = append(preds, *open)
			open = nil
		}
	}
	for i := 0; i < seqLen; i++ {
		if mask[i] == 0 || (i < len(en.SpecialTokenMask) && en.SpecialTokenMask[i] == 1) {
			flush()
			continue
		}
		score, idx := softmaxBest(logits[i*numLabels : (i+1)*numLabels])
		label := l.labels[idx]
		if label == "" || label == outsideLabel {
			flush()
			continue
		}
		prefix, group := splitLabel(label)
		start, end, ok := tokenSpan(en, i, len(chunk))
		if !ok {
			flush()
			continue
		}
		if open != nil && open.EntityClass == group && prefix != "B" {
			open.End = end
			open.Text = chunk[open.Start:open.End]
			if score < open.Confidence {
				open.Confidence = score
			}
			continue
		}
		flush()
		open = &extractor.RawPrediction{
			EntityClass: group,
			Text:        chunk[start:end],
			Confidence:  score,
			Start:       start,
			End:         end,
		}
	}
	flush()
	return preds, nil
}

func (l *Local) run(ids, mask []int64) ([]float32, []int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	shape := ort.NewShape(1, int64(len(ids)))
	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, nil, fmt.Errorf("create mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := l.session.Run([]ort.Value{idsTensor, maskTensor}, outputs); err != nil {
		return nil, nil, fmt.Errorf("run model: %w", err)
	}
	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, nil, errors.New("model output is not a float32 tensor")
	}
	defer logits.Destroy()

	data := append([]float32(nil), logits.GetData()...)
	return data, logits.GetShape(), nil
}

// tokenSpan returns the character span of token i clamped to the chunk.
func tokenSpan(en *tokenizer.Encoding, i, limit int) (int, int, bool) {
	if i >= len(en.Offsets) || len(en.Offsets[i]) < 2 {
		return 0, 0, false
	}
	start, end := en.Offsets[i][0], en.Offsets[i][1]
	if end > limit {
		end = limit
	}
	if start < 0 || start >= end {
		return 0, 0, false
	}
	return start, end, true
}

// softmaxBest returns the probability and index of the highest logit.
func softmaxBest(logits []float32) (float64, int) {
	if len(logits) == 0 {
		return 0, 0
	}
	best := 0
	for i := 1; i < len(logits); i++ {
		if logits[i] > logits[best] {
			best = i
		}
	}
	var sum float64
	maxLogit := float64(logits[best])
	for _, v := range logits {
		sum += math.Exp(float64(v) - maxLogit)
	}
	return 1 / sum, best
}
