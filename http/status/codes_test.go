package status

import (
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("string code", func(t *testing.T) {
		for _, code := range KnownCodes {
			require.Equal(t, strconv.Itoa(int(code)), StringCode(code))
		}
	})

	t.Run("text", func(t *testing.T) {
		require.Equal(t, "OK", Text(OK))
		require.Equal(t, "Request Header Fields Too Large", Text(RequestHeaderFieldsTooLarge))
		require.Empty(t, Text(Code(599)))
	})
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, RequestEntityTooLarge, CodeOf(ErrBodyTooLarge))
	require.Equal(t, RequestHeaderFieldsTooLarge, CodeOf(fmt.Errorf("decode: %w", ErrHeaderFieldsTooLarge)))
	require.Equal(t, InternalServerError, CodeOf(io.EOF))
	require.Equal(t, "malformed request line", ErrBadRequestLine.Error())
}
