package internal

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCloser struct {
	err error
}

func (c failingCloser) Close() error {
	return c.err
}

func TestMarshalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	err := MarshalFile(path, map[string]string{"sidebar": "about_orca"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"sidebar\": \"about_orca\"\n}\n", string(data))
}

func TestWriteFileReturnsWriteError(t *testing.T) {
	boom := errors.New("boom")

	err := WriteFile(filepath.Join(t.TempDir(), "out.html"), func(_ io.Writer) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestClose(t *testing.T) {
	var outErr error

	Close("ignored", failingCloser{err: os.ErrClosed}, &outErr)
	require.NoError(t, outErr)

	closeErr := errors.New("disk full")

	Close("index.html", failingCloser{err: closeErr}, &outErr)
	require.ErrorIs(t, outErr, closeErr)
	assert.Contains(t, outErr.Error(), "close index.html")
}
