package tokenizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens = []string{
	PadToken, UnkToken, ClsToken, SepToken, MaskToken, // 0-4
	"the", "blue", "mug", "un", "##want", "##ed", // 5-10
	"runn", "##ing", ",", ".", "£", "##9", "99", // 11-17
	"cafe", "!", "中", "文", "price", // 18-22
}

func newTestTokenizer(t *testing.T, opts Options) *Tokenizer {
	t.Helper()
	vocab, err := NewVocab(testTokens)
	require.NoError(t, err)
	return New(vocab, opts)
}

func TestTokenize(t *testing.T) {
	tok := newTestTokenizer(t, Options{Lowercase: true})

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple words", "the blue mug", []string{"the", "blue", "mug"}},
		{"lowercased", "The BLUE Mug", []string{"the", "blue", "mug"}},
		{"word pieces", "unwanted running", []string{"un", "##want", "##ed", "runn", "##ing"}},
		{"punctuation split", "mug, the mug.", []string{"mug", ",", "the", "mug", "."}},
		{"currency sign is not punctuation", "£9.99", []string{"£", "##9", ".", "99"}},
		{"accents stripped", "Café!", []string{"cafe", "!"}},
		{"unknown word", "teapot", []string{UnkToken}},
		{"partially known word", "unwantedly", []string{UnkToken}},
		{"cjk isolated", "中文", []string{"中", "文"}},
		{"special token kept", "the [MASK] mug", []string{"the", MaskToken, "mug"}},
		{"control characters dropped", "the\x00 blue\u200b mug", []string{"the", "blue", "mug"}},
		{"empty", "", nil},
		{"whitespace only", " \t\n ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tok.Tokenize(tt.input))
		})
	}
}

func TestTokenize_CasedKeepsCase(t *testing.T) {
	tok := newTestTokenizer(t, Options{Lowercase: false})
	assert.Equal(t, []string{UnkToken, "blue"}, tok.Tokenize("The blue"))
}

func TestTokenize_LongWordIsUnknown(t *testing.T) {
	tok := newTestTokenizer(t, Options{Lowercase: true})
	assert.Equal(t, []string{UnkToken}, tok.Tokenize(strings.Repeat("a", maxRunesPerWord+1)))
}

func TestEncode(t *testing.T) {
	tok := newTestTokenizer(t, Options{Lowercase: true})

	enc := tok.Encode("The blue mug costs £9.99")

	assert.Equal(t, []string{ClsToken, "the", "blue", "mug", UnkToken, "£", "##9", ".", "99", SepToken}, enc.Tokens)
	assert.Equal(t, []int{2, 5, 6, 7, 1, 15, 16, 14, 17, 3}, enc.IDs)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, enc.AttentionMask)
	assert.Equal(t, make([]int, 10), enc.TypeIDs)
	assert.Equal(t, 10, enc.Len())
}

func TestEncode_Empty(t *testing.T) {
	tok := newTestTokenizer(t, Options{Lowercase: true})

	enc := tok.Encode("")
	assert.Equal(t, []string{ClsToken, SepToken}, enc.Tokens)
	assert.Equal(t, []int{2, 3}, enc.IDs)
}

func TestEncode_Truncates(t *testing.T) {
	tok := newTestTokenizer(t, Options{Lowercase: true, MaxLength: 5})

	enc := tok.Encode("the blue mug the blue mug")
	assert.Equal(t, []string{ClsToken, "the", "blue", "mug", SepToken}, enc.Tokens)
	assert.Len(t, enc.AttentionMask, 5)
}

func TestEncode_DefaultMaxLength(t *testing.T) {
	tok := newTestTokenizer(t, Options{Lowercase: true})

	enc := tok.Encode(strings.Repeat("mug ", 1000))
	assert.Equal(t, DefaultMaxLength, enc.Len())
	assert.Equal(t, ClsToken, enc.Tokens[0])
	assert.Equal(t, SepToken, enc.Tokens[DefaultMaxLength-1])
}

func TestConvertIDsToTokens(t *testing.T) {
	tok := newTestTokenizer(t, Options{})
	assert.Equal(t, []string{ClsToken, "mug", UnkToken, UnkToken}, tok.ConvertIDsToTokens([]int{2, 7, -1, 999}))
}

func TestVocab(t *testing.T) {
	_, err := NewVocab([]string{"a", "b"})
	assert.ErrorContains(t, err, UnkToken)

	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(testTokens, "\r\n")+"\n"), 0o644))

	vocab, err := LoadVocab(path)
	require.NoError(t, err)
	assert.Equal(t, len(testTokens), vocab.Size())
	id, ok := vocab.ID("mug")
	assert.True(t, ok)
	assert.Equal(t, 7, id)
	assert.Equal(t, "price", vocab.Token(22))

	_, err = LoadVocab(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
