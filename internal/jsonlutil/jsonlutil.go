// internal/jsonlutil/jsonlutil.go
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// Reuse a 64 KiB buffered writer across JSONL writes.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

// Write encodes items as one JSON value per line.
//   - encode: converts one item to its wire type and calls enc.Encode
//   - isBroken: recognizer for broken/closed pipe errors; those are not
//     reported when flushing, since the reader has gone away
func Write[T any](out io.Writer, items []T, encode func(*json.Encoder, T) error, isBroken func(error) bool) error {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(out)
	defer func() {
		bw.Reset(io.Discard)
		bwPool.Put(bw)
	}()

	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, v := range items {
		if err := encode(enc, v); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil && (isBroken == nil || !isBroken(err)) {
		return err
	}
	return nil
}
