package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// WriteFile creates the file at path and lets write produce its contents.
// Close errors are joined with the write error.
func WriteFile(path string, write func(w io.Writer) error) (outErr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	defer Close(path, f, &outErr)

	return write(f)
}

// MarshalFile writes o as pretty printed JSON to the file at path.
func MarshalFile(path string, o any) error {
	return WriteFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(o)
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}

		return nil
	})
}

// Close a resource and joins the error to the outError if the close fails. Will
// ignore os.ErrClosed so it's safe to use together with "manual" closing of
// files.
func Close(name string, c io.Closer, outErr *error) {
	err := c.Close()
	if err != nil && !errors.Is(err, os.ErrClosed) {
		*outErr = errors.Join(*outErr, fmt.Errorf("close %s: %w", name, err))
	}
}
