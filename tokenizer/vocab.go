package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Special tokens used by BERT-style vocabularies
const (
	PadToken  = "[PAD]"
	UnkToken  = "[UNK]"
	ClsToken  = "[CLS]"
	SepToken  = "[SEP]"
	MaskToken = "[MASK]"
)

// Vocab maps WordPiece tokens to ids. The id of a token is its line number in vocab.txt.
type Vocab struct {
	tokens []string
	ids    map[string]int
}

// NewVocab builds a vocabulary from tokens in id order.
// [UNK], [CLS] and [SEP] must be present.
func NewVocab(tokens []string) (*Vocab, error) {
	v := &Vocab{
		tokens: tokens,
		ids:    make(map[string]int, len(tokens)),
	}
	for id, tok := range tokens {
		// First occurrence wins, matching how the pretrained files are read
		if _, ok := v.ids[tok]; !ok {
			v.ids[tok] = id
		}
	}

	for _, required := range []string{UnkToken, ClsToken, SepToken} {
		if _, ok := v.ids[required]; !ok {
			return nil, fmt.Errorf("vocabulary has no %s token", required)
		}
	}
	return v, nil
}

// ReadVocab reads a vocab.txt stream: one token per line
func ReadVocab(r io.Reader) (*Vocab, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		tokens = append(tokens, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return NewVocab(tokens)
}

// LoadVocab reads a vocab.txt file from disk
func LoadVocab(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()

	return ReadVocab(f)
}

// Size returns the number of entries in the vocabulary
func (v *Vocab) Size() int {
	return len(v.tokens)
}

// ID returns the id of tok
func (v *Vocab) ID(tok string) (int, bool) {
	id, ok := v.ids[tok]
	return id, ok
}

// Token returns the token for id, or [UNK] when id is out of range
func (v *Vocab) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		return UnkToken
	}
	return v.tokens[id]
}
