// Package segmenter adapts go-ego/gse to the domain Segmenter port.
package segmenter

import (
	"fmt"

	"github.com/go-ego/gse"
)

// GSE segments Chinese text with a jieba-compatible dictionary in accurate
// mode with HMM for unknown words. Safe for concurrent use once loaded.
type GSE struct {
	seg gse.Segmenter
}

// New loads the dictionary at dictPath, or gse's embedded Chinese
// dictionary when dictPath is empty.
func New(dictPath string) (*GSE, error) {
	s := &GSE{}
	s.seg.SkipLog = true

	var err error
	if dictPath == "" {
		err = s.seg.LoadDictEmbed()
	} else {
		err = s.seg.LoadDict(dictPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load segmenter dictionary: %w", err)
	}
	s.seg.LoadModel()
	return s, nil
}

// Cut splits text into words; whitespace and punctuation come back as their
// own tokens.
func (s *GSE) Cut(text string) []string {
	if text == "" {
		return nil
	}
	return s.seg.Cut(text, true)
}
