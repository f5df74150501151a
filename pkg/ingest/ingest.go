// Package ingest runs the external scraper for one request and reads back its
// line-delimited JSON output from a per-request temporary file.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	errs "twharvest/pkg/errors"
	"twharvest/pkg/handle"
	"twharvest/pkg/interval"
	"twharvest/pkg/logger"
)

// maxLineSize bounds a single output line; tweets with many media entries can
// exceed bufio's 64KiB default.
const maxLineSize = 16 * 1024 * 1024

// Ingester invokes the scraper and collects its output
type Ingester struct {
	Executable string
	ScratchDir string
	Runner     Runner
	Logger     logger.Logger
}

// New creates an Ingester running executable through ExecRunner
func New(executable, scratchDir string, log logger.Logger) *Ingester {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Ingester{
		Executable: executable,
		ScratchDir: scratchDir,
		Runner:     ExecRunner{},
		Logger:     log,
	}
}

// TempPath builds the output path for one request. The random suffix keeps
// paths unique across concurrent tasks and retries of the same window.
func (in *Ingester) TempPath(h handle.Handle, window *interval.Window) string {
	name := "tweets-" + sanitize(string(h))
	if window != nil {
		name += fmt.Sprintf("-%s_%s", window.Start.Format("20060102"), window.End.Format("20060102"))
	}
	name += "-" + uuid.NewString() + ".json"
	return filepath.Join(in.ScratchDir, name)
}

// Args builds the scraper command line. Without a window the whole profile is
// requested.
func Args(h handle.Handle, outputPath string, window *interval.Window) []string {
	args := []string{"-u", string(h)}
	if window != nil {
		args = append(args, "--since", window.Since(), "--until", window.Until())
	} else {
		args = append(args, "--profile-full")
	}
	return append(args, "-o", outputPath, "--json")
}

// Ingest runs the scraper once for h (optionally bounded by window) and
// returns the parsed records. The temporary output file is removed on every
// exit path before Ingest returns. A missing output file after a successful
// run means the scraper found nothing. A malformed line fails the whole
// ingestion.
func (in *Ingester) Ingest(ctx context.Context, h handle.Handle, window *interval.Window) ([]RawRecord, error) {
	if err := os.MkdirAll(in.ScratchDir, 0o755); err != nil {
		return nil, errs.New(errs.ErrorTypeIO, "failed to create scratch directory", err)
	}

	path := in.TempPath(h, window)
	defer in.cleanUp(path)

	fields := map[string]interface{}{
		"handle": string(h),
		"output": path,
	}
	if window != nil {
		fields["since"] = window.Since()
		fields["until"] = window.Until()
	}
	in.Logger.DebugWithFields("Running scraper", fields)

	if err := in.Runner.Run(ctx, in.Executable, Args(h, path, window)...); err != nil {
		if errs.TypeOf(err) == errs.ErrorTypeUnknown {
			err = errs.Process(fmt.Sprintf("%s failed", in.Executable), -1, err)
		}
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			in.Logger.DebugWithFields("Scraper produced no output", fields)
			return []RawRecord{}, nil
		}
		return nil, errs.New(errs.ErrorTypeIO, "failed to stat scraper output", err)
	}

	records, err := Collect(Lines(path))
	if err != nil {
		return nil, err
	}

	in.Logger.DebugWithFields("Scraper output parsed", map[string]interface{}{
		"handle":  string(h),
		"records": len(records),
	})
	return records, nil
}

func (in *Ingester) cleanUp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		in.Logger.WithError(err).WarnWithFields("Failed to remove scraper output", map[string]interface{}{
			"output": path,
		})
	}
}

// Lines streams the records of a line-delimited JSON file. Every range over
// the returned sequence reopens the file; nothing is kept between iterations.
// The first open, read or parse error is yielded once and ends the sequence.
// Whitespace-only lines are skipped rather than treated as malformed.
func Lines(path string) iter.Seq2[RawRecord, error] {
	return func(yield func(RawRecord, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(RawRecord{}, errs.New(errs.ErrorTypeIO, "failed to open scraper output", err))
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			rec, err := parseLine(line)
			if err != nil {
				yield(RawRecord{}, errs.New(errs.ErrorTypeParse, fmt.Sprintf("line %d of %s", lineNo, filepath.Base(path)), err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(RawRecord{}, errs.New(errs.ErrorTypeIO, "failed to read scraper output", err))
		}
	}
}

// Collect drains a record sequence, stopping at the first error
func Collect(seq iter.Seq2[RawRecord, error]) ([]RawRecord, error) {
	records := []RawRecord{}
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseLine(line []byte) (RawRecord, error) {
	var rec RawRecord
	if line[0] != '{' {
		return rec, errors.New("not a JSON object")
	}
	if err := json.Unmarshal(line, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func sanitize(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
