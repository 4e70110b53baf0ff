package embed

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// wordPieceTokenizer is a minimal BERT-compatible tokenizer: greedy
// longest-match-first subword splitting against a vocab.txt file,
// producing the input_ids/attention_mask pair the embedding model
// expects.
type wordPieceTokenizer struct {
	vocab        map[string]int64
	continuation string
	clsID        int64
	sepID        int64
	padID        int64
	unkID        int64
}

func loadWordPieceTokenizer(vocabPath string) (*wordPieceTokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var idx int64
	for sc.Scan() {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		vocab[token] = idx
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan vocab: %w", err)
	}

	return &wordPieceTokenizer{
		vocab:        vocab,
		continuation: "##",
		clsID:        vocab["[CLS]"],
		sepID:        vocab["[SEP]"],
		padID:        vocab["[PAD]"],
		unkID:        vocab["[UNK]"],
	}, nil
}

// encode converts text into token IDs and an attention mask of length seqLen.
func (t *wordPieceTokenizer) encode(text string, seqLen int) ([]int64, []int64) {
	tokens := []int64{t.clsID}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		tokens = append(tokens, t.wordPiece(w)...)
		if len(tokens) >= seqLen-1 {
			break
		}
	}
	if len(tokens) > seqLen-1 {
		tokens = tokens[:seqLen-1]
	}
	tokens = append(tokens, t.sepID)

	attn := make([]int64, seqLen)
	for i := range tokens {
		attn[i] = 1
	}
	if len(tokens) < seqLen {
		pad := make([]int64, seqLen-len(tokens))
		for i := range pad {
			pad[i] = t.padID
		}
		tokens = append(tokens, pad...)
	}
	return tokens, attn
}

func (t *wordPieceTokenizer) wordPiece(token string) []int64 {
	if id, ok := t.vocab[token]; ok {
		return []int64{id}
	}

	var pieces []int64
	start := 0
	for start < len(token) {
		end := len(token)
		found := false
		for end > start {
			sub := token[start:end]
			if start > 0 {
				sub = t.continuation + sub
			}
			if id, ok := t.vocab[sub]; ok {
				pieces = append(pieces, id)
				start = end
				found = true
				break
			}
			end--
		}
		if !found {
			return []int64{t.unkID}
		}
	}
	if len(pieces) == 0 {
		return []int64{t.unkID}
	}
	return pieces
}
