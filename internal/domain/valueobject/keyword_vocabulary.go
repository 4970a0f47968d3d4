package valueobject

// KeywordEntry is one row of the suspicious-keyword vocabulary.
type KeywordEntry struct {
	Keyword   string
	Frequency int
}

// KeywordVocabulary is the read-only set of suspicious keywords. It is built
// once at startup and shared by every scorer call.
type KeywordVocabulary struct {
	entries []KeywordEntry
	index   map[string]int
}

// NewKeywordVocabulary builds a vocabulary. Blank keywords are skipped and
// the first occurrence of a duplicate wins.
func NewKeywordVocabulary(entries []KeywordEntry) *KeywordVocabulary {
	v := &KeywordVocabulary{
		entries: make([]KeywordEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Keyword == "" {
			continue
		}
		if _, dup := v.index[e.Keyword]; dup {
			continue
		}
		v.index[e.Keyword] = len(v.entries)
		v.entries = append(v.entries, e)
	}
	return v
}

// Contains reports whether word is a suspicious keyword.
func (v *KeywordVocabulary) Contains(word string) bool {
	_, ok := v.index[word]
	return ok
}

// Frequency returns the corpus frequency recorded for word.
func (v *KeywordVocabulary) Frequency(word string) (int, bool) {
	i, ok := v.index[word]
	if !ok {
		return 0, false
	}
	return v.entries[i].Frequency, true
}

func (v *KeywordVocabulary) Len() int { return len(v.entries) }

// Entries returns a copy of the vocabulary in file order.
func (v *KeywordVocabulary) Entries() []KeywordEntry {
	out := make([]KeywordEntry, len(v.entries))
	copy(out, v.entries)
	return out
}
