// Package artifact writes run artifacts such as the replacement audit
// extract to a directory or an S3 bucket.
package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
)

// Sink stores named artifacts.
type Sink interface {
	// Put stores data under name and returns where it was written.
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// EncodeCSV renders a header row followed by rows.
func EncodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range rows {
		if len(r) != len(header) {
			return nil, fmt.Errorf("csv row %d: %d cells, header has %d", i, len(r), len(header))
		}
		if err := w.Write(r); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Options configures Open.
type Options struct {
	// S3 settings used when the destination is an s3:// URL. Bucket and
	// Prefix are taken from the URL.
	S3 S3Config
}

// Open returns the sink for dest: "s3://bucket/prefix" selects an S3
// sink, anything else is a local directory.
func Open(ctx context.Context, dest string, opts Options) (Sink, error) {
	if rest, ok := strings.CutPrefix(dest, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("artifact destination %q: missing bucket", dest)
		}
		cfg := opts.S3
		cfg.Bucket = bucket
		cfg.Prefix = prefix
		return NewS3Sink(ctx, cfg)
	}
	if dest == "" {
		dest = "."
	}
	return NewDirSink(dest), nil
}
