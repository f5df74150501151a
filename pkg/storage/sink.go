package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	errs "twharvest/pkg/errors"
	"twharvest/pkg/models"
)

// Sink writes records to a file or a stream
type Sink struct {
	path string
	w    io.Writer
}

// NewFileSink creates a sink replacing path on every Write
func NewFileSink(path string) *Sink {
	return &Sink{path: path}
}

// NewWriterSink creates a sink streaming to w
func NewWriterSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Path returns the destination file, empty for stream sinks
func (s *Sink) Path() string {
	return s.path
}

// Write emits one JSON object per line
func (s *Sink) Write(records []models.Record) error {
	if s.path == "" {
		return Encode(s.w, records)
	}
	return s.writeFile(records)
}

func (s *Sink) writeFile(records []models.Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.New(errs.ErrorTypeIO, "failed to create output directory", err)
	}

	out, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errs.New(errs.ErrorTypeIO, "failed to create temporary file", err)
	}
	tempFile := out.Name()

	err = Encode(out, records)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return err
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeIO, "failed to close file", closeErr)
	}

	if err := os.Chmod(tempFile, 0o644); err != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeIO, "failed to set file mode", err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeIO, "failed to rename temporary file", err)
	}
	return nil
}

// Encode writes records to w as line-delimited JSON
func Encode(w io.Writer, records []models.Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return errs.New(errs.ErrorTypeIO, fmt.Sprintf("failed to encode record %s", records[i].TweetID), err)
		}
	}
	if err := bw.Flush(); err != nil {
		return errs.New(errs.ErrorTypeIO, "failed to write records", err)
	}
	return nil
}
