// Package tokenizer implements the uncased BERT WordPiece tokenizer: basic
// cleanup and punctuation splitting followed by greedy longest-match-first
// subword lookup against a vocab.txt vocabulary.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxLength is the model's maximum sequence length, special tokens included
	DefaultMaxLength = 512

	continuationPrefix = "##"
	maxRunesPerWord    = 100
)

// Encoding is a tokenized single sequence ready for the model
type Encoding struct {
	IDs           []int
	Tokens        []string
	TypeIDs       []int
	AttentionMask []int
}

// Len returns the number of positions in the encoding
func (e Encoding) Len() int {
	return len(e.IDs)
}

// Options configures a Tokenizer
type Options struct {
	// Lowercase also strips accents, as the uncased models expect
	Lowercase bool
	// MaxLength truncates encodings, [CLS] and [SEP] included. Zero means DefaultMaxLength.
	MaxLength int
}

// Tokenizer turns text into WordPiece ids
type Tokenizer struct {
	vocab     *Vocab
	lowercase bool
	maxLength int
	special   map[string]bool
}

// New creates a Tokenizer over vocab
func New(vocab *Vocab, opts Options) *Tokenizer {
	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Tokenizer{
		vocab:     vocab,
		lowercase: opts.Lowercase,
		maxLength: maxLength,
		special: map[string]bool{
			PadToken: true, UnkToken: true, ClsToken: true, SepToken: true, MaskToken: true,
		},
	}
}

// Encode tokenizes text as a single sequence wrapped in [CLS] ... [SEP],
// truncated to the configured maximum length. Padding a single sequence is a no-op.
func (t *Tokenizer) Encode(text string) Encoding {
	pieces := t.Tokenize(text)
	if limit := t.maxLength - 2; len(pieces) > limit {
		pieces = pieces[:limit]
	}

	tokens := make([]string, 0, len(pieces)+2)
	tokens = append(tokens, ClsToken)
	tokens = append(tokens, pieces...)
	tokens = append(tokens, SepToken)

	enc := Encoding{
		IDs:           make([]int, len(tokens)),
		Tokens:        tokens,
		TypeIDs:       make([]int, len(tokens)),
		AttentionMask: make([]int, len(tokens)),
	}
	unkID, _ := t.vocab.ID(UnkToken)
	for i, tok := range tokens {
		id, ok := t.vocab.ID(tok)
		if !ok {
			id = unkID
		}
		enc.IDs[i] = id
		enc.AttentionMask[i] = 1
	}
	return enc
}

// Tokenize splits text into WordPiece tokens without special tokens or truncation
func (t *Tokenizer) Tokenize(text string) []string {
	var pieces []string
	for _, word := range t.basicTokenize(text) {
		if t.special[word] {
			pieces = append(pieces, word)
			continue
		}
		pieces = append(pieces, t.wordPiece(word)...)
	}
	return pieces
}

// ConvertIDsToTokens maps ids back to vocabulary tokens; unknown ids become [UNK]
func (t *Tokenizer) ConvertIDsToTokens(ids []int) []string {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = t.vocab.Token(id)
	}
	return tokens
}

// basicTokenize cleans text and splits it on whitespace and punctuation
func (t *Tokenizer) basicTokenize(text string) []string {
	text = padCJK(cleanText(text))

	var words []string
	for _, tok := range strings.Fields(text) {
		if t.special[tok] {
			words = append(words, tok)
			continue
		}
		if t.lowercase {
			tok = stripAccents(strings.ToLower(tok))
		}
		words = append(words, splitPunctuation(tok)...)
	}
	return words
}

// wordPiece splits a single word by greedy longest-match-first lookup
func (t *Tokenizer) wordPiece(word string) []string {
	runes := []rune(word)
	if len(runes) > maxRunesPerWord {
		return []string{UnkToken}
	}

	var pieces []string
	for start := 0; start < len(runes); {
		end := len(runes)
		match := ""
		for start < end {
			candidate := string(runes[start:end])
			if start > 0 {
				candidate = continuationPrefix + candidate
			}
			if _, ok := t.vocab.ID(candidate); ok {
				match = candidate
				break
			}
			end--
		}
		if match == "" {
			return []string{UnkToken}
		}
		pieces = append(pieces, match)
		start = end
	}
	return pieces
}

// cleanText drops NUL, U+FFFD and control characters and normalises whitespace to spaces
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
			continue
		case isWhitespace(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// padCJK surrounds CJK ideographs with spaces so each becomes its own word
func padCJK(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isCJK(r) {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitPunctuation makes every punctuation character a separate token
func splitPunctuation(s string) []string {
	var out []string
	var cur []rune
	for _, r := range s {
		if isPunctuation(r) {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = cur[:0]
			}
			out = append(out, string(r))
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.In(r, unicode.Cc, unicode.Cf)
}

// isPunctuation treats all non-alphanumeric ASCII symbols as punctuation, like BERT does
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
