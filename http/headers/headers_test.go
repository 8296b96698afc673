package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaders(t *testing.T) {
	newHeaders := func() *Headers {
		return New().
			Add("Hello", "world").
			Add("Some", "multiple").
			Add("Host", "localhost").
			Add("some", "values")
	}

	t.Run("case insensitive lookup", func(t *testing.T) {
		h := newHeaders()
		require.Equal(t, "world", h.Value("HELLO"))
		require.Equal(t, []string{"multiple", "values"}, h.Values("SOME"))
		require.True(t, h.Has("host"))
		require.False(t, h.Has("random"))
	})

	t.Run("ValueOr", func(t *testing.T) {
		h := newHeaders()
		require.Equal(t, "multiple", h.ValueOr("Some", "this should not happen"))
		require.Equal(t, "this SHOULD happen", h.ValueOr("Random", "this SHOULD happen"))
		require.Empty(t, h.Value("Random"))
		require.Nil(t, h.Values("Random"))
	})

	t.Run("Set replaces every value in place", func(t *testing.T) {
		h := newHeaders().Set("SOME", "single")
		require.Equal(t, []string{"single"}, h.Values("some"))
		require.Equal(t, []Pair{
			{"Hello", "world"},
			{"SOME", "single"},
			{"Host", "localhost"},
		}, h.Expose())
	})

	t.Run("Set of a new key appends", func(t *testing.T) {
		h := New().Set("Accept", "a", "b")
		require.Equal(t, []string{"a", "b"}, h.Values("accept"))
		require.Equal(t, 2, h.Len())
	})

	t.Run("Keys keep the first spelling and order", func(t *testing.T) {
		require.Equal(t, []string{"Hello", "Some", "Host"}, newHeaders().Keys())
	})

	t.Run("Iter preserves arrival order", func(t *testing.T) {
		var got []Pair
		for key, value := range newHeaders().Iter() {
			got = append(got, Pair{key, value})
		}

		require.Equal(t, newHeaders().Expose(), got)
	})

	t.Run("Delete and Clone", func(t *testing.T) {
		h := newHeaders()
		clone := h.Clone()
		h.Delete("some")
		require.False(t, h.Has("Some"))
		require.True(t, clone.Has("Some"))
		require.Equal(t, 4, clone.Len())

		h.Clear()
		require.Zero(t, h.Len())
	})
}
