// Package inference talks to the masked-language model. The model itself runs
// out of process behind an Open Inference Protocol (KServe v2) endpoint; this
// package sends encoded sequences and returns per-position logits.
package inference

import (
	"context"
	"errors"
	"fmt"

	"bookscraper/tokenizer"
)

// ErrModelUnavailable wraps every failure to obtain logits from the model server
var ErrModelUnavailable = errors.New("masked-language model unavailable")

// Model produces a logit distribution over the vocabulary for every input position
type Model interface {
	Logits(ctx context.Context, enc tokenizer.Encoding) (*Logits, error)
}

// Logits is a row-major [SeqLen x VocabSize] matrix for a single sequence
type Logits struct {
	SeqLen    int
	VocabSize int
	Data      []float32
}

// NewLogits checks that data holds exactly seqLen rows of vocabSize scores
func NewLogits(seqLen, vocabSize int, data []float32) (*Logits, error) {
	if seqLen < 0 || vocabSize <= 0 {
		return nil, fmt.Errorf("invalid logits shape [%d, %d]", seqLen, vocabSize)
	}
	if len(data) != seqLen*vocabSize {
		return nil, fmt.Errorf("logits shape [%d, %d] needs %d values, got %d", seqLen, vocabSize, seqLen*vocabSize, len(data))
	}
	return &Logits{SeqLen: seqLen, VocabSize: vocabSize, Data: data}, nil
}

// Row returns the scores for position i
func (l *Logits) Row(i int) []float32 {
	return l.Data[i*l.VocabSize : (i+1)*l.VocabSize]
}

// Argmax returns the highest-scoring vocabulary id at each position.
// Ties resolve to the lowest id.
func Argmax(l *Logits) []int {
	ids := make([]int, l.SeqLen)
	for i := range l.SeqLen {
		row := l.Row(i)
		best := 0
		for id := 1; id < len(row); id++ {
			if row[id] > row[best] {
				best = id
			}
		}
		ids[i] = best
	}
	return ids
}
