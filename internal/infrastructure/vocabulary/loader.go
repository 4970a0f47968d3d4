// Package vocabulary loads the suspicious-keyword list.
package vocabulary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// LoadFile reads a JSON array of [keyword, frequency] pairs from path.
func LoadFile(path string) (*valueobject.KeywordVocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyword vocabulary: %w", err)
	}
	defer f.Close()

	vocab, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("keyword vocabulary %s: %w", path, err)
	}
	return vocab, nil
}

// Load decodes the vocabulary from r. An empty list is an error.
func Load(r io.Reader) (*valueobject.KeywordVocabulary, error) {
	var rows [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("vocabulary is empty")
	}

	entries := make([]valueobject.KeywordEntry, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			return nil, fmt.Errorf("row %d: empty", i)
		}
		var entry valueobject.KeywordEntry
		if err := json.Unmarshal(row[0], &entry.Keyword); err != nil {
			return nil, fmt.Errorf("row %d: keyword: %w", i, err)
		}
		if len(row) > 1 {
			var freq float64
			if err := json.Unmarshal(row[1], &freq); err != nil {
				return nil, fmt.Errorf("row %d: frequency: %w", i, err)
			}
			entry.Frequency = int(freq)
		}
		entries = append(entries, entry)
	}
	return valueobject.NewKeywordVocabulary(entries), nil
}
