package validation

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// memo remembers settled lookup verdicts within one run. Network failures
// are never stored so a later occurrence of the same value gets a fresh try.
type memo struct {
	cache *lru.Cache[string, Verdict]
}

func newMemo(size int) *memo {
	if size <= 0 {
		return nil
	}
	cache, err := lru.New[string, Verdict](size)
	if err != nil {
		return nil
	}
	return &memo{cache: cache}
}

func (m *memo) get(key string) (Verdict, bool) {
	if m == nil {
		return Verdict{}, false
	}
	return m.cache.Get(key)
}

func (m *memo) put(key string, v Verdict) {
	if m == nil || v.Kind == KindNetworkFailure {
		return
	}
	m.cache.Add(key, v)
}
