// Package storage writes normalized records as line-delimited JSON.
//
// A Sink either streams to a writer (stdout) or replaces a file atomically:
// records go to a temporary file in the destination directory which is
// renamed over the destination once everything has been written, so readers
// never observe a partial output file.
//
// Usage:
//
//	sink := storage.NewFileSink("tweets.ndjson")
//	if err := sink.Write(records); err != nil {
//	    log.Fatal(err)
//	}
package storage
