package embed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// ONNXEmbedder runs a sentence-embedding model locally via onnxruntime_go:
// session and tensors are allocated once at load, every Embed call runs the
// session under a mutex, and the hidden states are mean-pooled into a
// single vector.
type ONNXEmbedder struct {
	session   *ort.AdvancedSession
	tokenizer *wordPieceTokenizer
	seqLen    int
	dimension int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu     sync.Mutex
	logger *zap.Logger
}

// NewONNXEmbedder loads the model and vocabulary from modelDir:
//
//	modelDir/model.onnx
//	modelDir/vocab.txt
//
// sharedLibPath is ONNXRUNTIME_SHARED_LIBRARY_PATH; seqLen and dimension
// describe the model's fixed input/output shapes.
func NewONNXEmbedder(modelDir, sharedLibPath string, seqLen, dimension int, logger *zap.Logger) (*ONNXEmbedder, error) {
	if seqLen <= 0 {
		seqLen = 256
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embed.NewONNXEmbedder: dimension must be positive")
	}

	if sharedLibPath != "" {
		ort.SetSharedLibraryPath(sharedLibPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("embed.NewONNXEmbedder: initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(modelDir, "model.onnx")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("embed.NewONNXEmbedder: model file missing at %s: %w", modelPath, err)
	}

	tokenizer, err := loadWordPieceTokenizer(filepath.Join(modelDir, "vocab.txt"))
	if err != nil {
		return nil, fmt.Errorf("embed.NewONNXEmbedder: load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("embed.NewONNXEmbedder: allocate input_ids: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("embed.NewONNXEmbedder: allocate attention_mask: %w", err)
	}
	outputShape := ort.NewShape(1, int64(seqLen), int64(dimension))
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("embed.NewONNXEmbedder: allocate output: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"last_hidden_state"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("embed.NewONNXEmbedder: create onnx session: %w", err)
	}

	return &ONNXEmbedder{
		session:       session,
		tokenizer:     tokenizer,
		seqLen:        seqLen,
		dimension:     dimension,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
		logger:        logger,
	}, nil
}

func (e *ONNXEmbedder) Dimension() int { return e.dimension }

// Embed runs inference and mean-pools the last hidden state over
// non-padding tokens, the standard sentence-embedding pooling strategy.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, attn := e.tokenizer.encode(text, e.seqLen)

	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.inputIDs.GetData(), ids)
	copy(e.attentionMask.GetData(), attn)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("embed.ONNXEmbedder.Embed: onnx run: %w", err)
	}

	hidden := e.output.GetData()
	return meanPool(hidden, attn, e.seqLen, e.dimension), nil
}

func meanPool(hidden []float32, attn []int64, seqLen, dim int) []float32 {
	out := make([]float32, dim)
	var count float32
	for t := 0; t < seqLen; t++ {
		if attn[t] == 0 {
			continue
		}
		count++
		base := t * dim
		for d := 0; d < dim; d++ {
			out[d] += hidden[base+d]
		}
	}
	if count == 0 {
		return out
	}
	for d := range out {
		out[d] /= count
	}
	return out
}

// Close releases the underlying ONNX session.
func (e *ONNXEmbedder) Close() error {
	return e.session.Destroy()
}
