package headers

import (
	"iter"
	"slices"

	"github.com/indigo-web/utils/strcomp"
)

// Pair is a single header field. Keys are kept exactly as they were added, only the
// lookups are case-insensitive.
type Pair struct {
	Key, Value string
}

// Headers is a case-insensitive ordered multimap. The order of pairs is the order they
// were added in, which is important for both decoding (arrival order) and encoding (the
// wire order of caller-set fields).
type Headers struct {
	pairs []Pair
}

func New() *Headers {
	return NewPrealloc(0)
}

// NewPrealloc returns an instance with pre-allocated space for n pairs.
func NewPrealloc(n int) *Headers {
	return &Headers{
		pairs: make([]Pair, 0, n),
	}
}

// NewFromMap is a convenient constructor mostly for tests. As maps are unordered, the
// resulting pairs order between different keys isn't determined.
func NewFromMap(m map[string][]string) *Headers {
	h := NewPrealloc(len(m))

	for key, values := range m {
		for _, value := range values {
			h.Add(key, value)
		}
	}

	return h
}

// Add appends a new value to the key, keeping values that already exist.
func (h *Headers) Add(key, value string) *Headers {
	h.pairs = append(h.pairs, Pair{Key: key, Value: value})
	return h
}

// Set replaces all the values of the key with the passed ones. The new values are
// placed at the position of the first existing occurrence, if any.
func (h *Headers) Set(key string, values ...string) *Headers {
	first := -1
	for i, pair := range h.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			first = i
			break
		}
	}

	if first == -1 {
		for _, value := range values {
			h.Add(key, value)
		}

		return h
	}

	h.Delete(key)
	replacement := make([]Pair, len(values))
	for i, value := range values {
		replacement[i] = Pair{Key: key, Value: value}
	}

	h.pairs = slices.Insert(h.pairs, first, replacement...)

	return h
}

// Get returns the first value of the key and whether the key is presented at all.
func (h *Headers) Get(key string) (string, bool) {
	for _, pair := range h.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Value returns the first value of the key or an empty string.
func (h *Headers) Value(key string) string {
	return h.ValueOr(key, "")
}

// ValueOr returns the first value of the key or the fallback.
func (h *Headers) ValueOr(key, or string) string {
	value, found := h.Get(key)
	if !found {
		return or
	}

	return value
}

// Values returns all the values of the key in their order. Returns nil if there
// are none.
func (h *Headers) Values(key string) (values []string) {
	for _, pair := range h.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			values = append(values, pair.Value)
		}
	}

	return values
}

func (h *Headers) Has(key string) bool {
	_, found := h.Get(key)
	return found
}

// Delete removes all the values of the key.
func (h *Headers) Delete(key string) *Headers {
	h.pairs = slices.DeleteFunc(h.pairs, func(pair Pair) bool {
		return strcomp.EqualFold(pair.Key, key)
	})

	return h
}

// Keys returns unique keys in order of their first occurrence. The spelling of the
// first occurrence wins.
func (h *Headers) Keys() []string {
	var keys []string

	for _, pair := range h.pairs {
		if !contains(keys, pair.Key) {
			keys = append(keys, pair.Key)
		}
	}

	return keys
}

// Iter walks over all the pairs in their order.
func (h *Headers) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range h.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Len returns the number of pairs (not unique keys.)
func (h *Headers) Len() int {
	return len(h.pairs)
}

// Clone returns a deep copy safe to be modified independently.
func (h *Headers) Clone() *Headers {
	return &Headers{pairs: slices.Clone(h.pairs)}
}

// Expose returns the underlying pairs. Modifying them modifies the headers.
func (h *Headers) Expose() []Pair {
	return h.pairs
}

// Clear removes all the pairs, keeping the allocated space.
func (h *Headers) Clear() {
	h.pairs = h.pairs[:0]
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if strcomp.EqualFold(k, key) {
			return true
		}
	}

	return false
}
