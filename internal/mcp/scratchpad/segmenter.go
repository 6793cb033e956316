package scratchpad

import (
	"sync"

	errors "github.com/Laisky/errors/v2"
	"github.com/go-ego/gse"
)

// Segmenter splits CJK text into dictionary words.
type Segmenter interface {
	Cut(text string) []string
}

// gseSegmenter segments text with the embedded gse dictionary.
type gseSegmenter struct {
	seg gse.Segmenter
}

// NewGseSegmenter loads the embedded gse dictionary.
func NewGseSegmenter() (Segmenter, error) {
	s := &gseSegmenter{}
	s.seg.SkipLog = true
	if err := s.seg.LoadDictEmbed(); err != nil {
		return nil, errors.Wrap(err, "load gse embedded dictionary")
	}
	return s, nil
}

// Cut segments text using the dictionary plus HMM for unknown words.
func (s *gseSegmenter) Cut(text string) []string {
	return s.seg.Cut(text, true)
}

// lazySegmenter defers dictionary loading to the first CJK query.
type lazySegmenter struct {
	once    sync.Once
	load    func() (Segmenter, error)
	inner   Segmenter
	loadErr error
}

// newLazySegmenter wraps a loader that runs at most once.
func newLazySegmenter(load func() (Segmenter, error)) *lazySegmenter {
	return &lazySegmenter{load: load}
}

// get returns the loaded segmenter or the load error.
func (l *lazySegmenter) get() (Segmenter, error) {
	l.once.Do(func() {
		l.inner, l.loadErr = l.load()
		if l.loadErr == nil && l.inner == nil {
			l.loadErr = errors.New("segmenter loader returned nil")
		}
	})
	return l.inner, l.loadErr
}
