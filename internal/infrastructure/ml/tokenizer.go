package ml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	tokenPad = "[PAD]"
	tokenUNK = "[UNK]"
	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"

	maxCharsPerWord = 100
)

// Encoding is the model input for one sequence, padded to the tokenizer's
// max length.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
}

// Tokenizer is an uncased BERT WordPiece tokenizer (bert-base-chinese).
// Immutable after construction.
type Tokenizer struct {
	vocab     map[string]int64
	maxLength int
	padID     int64
	unkID     int64
	clsID     int64
	sepID     int64
}

// LoadTokenizer reads a vocab.txt (one token per line, id = line number).
func LoadTokenizer(path string, maxLength int) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tokenizer vocabulary: %w", err)
	}
	defer f.Close()

	tok, err := NewTokenizer(f, maxLength)
	if err != nil {
		return nil, fmt.Errorf("tokenizer vocabulary %s: %w", path, err)
	}
	return tok, nil
}

// NewTokenizer reads the vocabulary from r.
func NewTokenizer(r io.Reader, maxLength int) (*Tokenizer, error) {
	if maxLength < 2 {
		return nil, fmt.Errorf("max length must be at least 2, got %d", maxLength)
	}

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(r)
	var id int64
	for sc.Scan() {
		token := strings.TrimRight(sc.Text(), "\r")
		if _, dup := vocab[token]; !dup {
			vocab[token] = id
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	t := &Tokenizer{vocab: vocab, maxLength: maxLength}
	var missing []string
	for _, special := range []struct {
		token string
		dst   *int64
	}{
		{tokenPad, &t.padID},
		{tokenUNK, &t.unkID},
		{tokenCLS, &t.clsID},
		{tokenSEP, &t.sepID},
	} {
		v, ok := vocab[special.token]
		if !ok {
			missing = append(missing, special.token)
			continue
		}
		*special.dst = v
	}
	if len(missing) > 0 {
		return nil, errors.New("vocabulary lacks special tokens " + strings.Join(missing, ", "))
	}
	return t, nil
}

// MaxLength is the fixed sequence length of every Encoding.
func (t *Tokenizer) MaxLength() int { return t.maxLength }

// Encode tokenizes text as [CLS] tokens [SEP], truncating and padding to
// MaxLength.
func (t *Tokenizer) Encode(text string) Encoding {
	pieces := t.Tokenize(text)
	if limit := t.maxLength - 2; len(pieces) > limit {
		pieces = pieces[:limit]
	}

	enc := Encoding{
		InputIDs:      make([]int64, t.maxLength),
		AttentionMask: make([]int64, t.maxLength),
		TokenTypeIDs:  make([]int64, t.maxLength),
	}
	enc.InputIDs[0] = t.clsID
	for i, p := range pieces {
		enc.InputIDs[i+1] = t.id(p)
	}
	enc.InputIDs[len(pieces)+1] = t.sepID
	for i := range enc.InputIDs {
		if i < len(pieces)+2 {
			enc.AttentionMask[i] = 1
		} else {
			enc.InputIDs[i] = t.padID
		}
	}
	return enc
}

// Tokenize returns the WordPiece tokens of text without special tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	var out []string
	for _, word := range basicTokenize(text) {
		out = append(out, t.wordPiece(word)...)
	}
	return out
}

func (t *Tokenizer) id(token string) int64 {
	if v, ok := t.vocab[token]; ok {
		return v
	}
	return t.unkID
}

// wordPiece splits word greedily into the longest vocabulary prefixes,
// marking continuations with "##".
func (t *Tokenizer) wordPiece(word string) []string {
	runes := []rune(word)
	if len(runes) > maxCharsPerWord {
		return []string{tokenUNK}
	}

	var pieces []string
	for start := 0; start < len(runes); {
		end := len(runes)
		var match string
		for ; end > start; end-- {
			candidate := string(runes[start:end])
			if start > 0 {
				candidate = "##" + candidate
			}
			if _, ok := t.vocab[candidate]; ok {
				match = candidate
				break
			}
		}
		if match == "" {
			return []string{tokenUNK}
		}
		pieces = append(pieces, match)
		start = end
	}
	return pieces
}

// basicTokenize cleans text, isolates CJK characters and punctuation,
// lower-cases and strips accents.
func basicTokenize(text string) []string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
			continue
		case isWhitespace(r):
			b.WriteByte(' ')
		case isCJK(r):
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	var out []string
	for _, word := range strings.Fields(b.String()) {
		word = stripAccents(strings.ToLower(word))
		out = append(out, splitPunctuation(word)...)
	}
	return out
}

func stripAccents(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitPunctuation(word string) []string {
	var out []string
	var cur []rune
	for _, r := range word {
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
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.In(r, unicode.Cc, unicode.Cf)
}

// isPunctuation treats all non-alphanumeric ASCII as punctuation, like BERT.
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
