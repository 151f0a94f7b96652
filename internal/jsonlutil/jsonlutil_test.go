package jsonlutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"go.uber.org/goleak"
)

type failWriter struct{ err error }

func (f failWriter) Write([]byte) (int, error) { return 0, f.err }

func encodeInt(enc *json.Encoder, v int) error { return enc.Encode(map[string]int{"v": v}) }

func TestWriteOneLinePerItem(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, []int{1, 2, 3}, encodeInt, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "{\"v\":1}\n{\"v\":2}\n{\"v\":3}\n"
	if b.String() != want {
		t.Fatalf("got %q want %q", b.String(), want)
	}
}

func TestWriteSuppressesBrokenPipe(t *testing.T) {
	isBroken := func(err error) bool { return errors.Is(err, io.ErrClosedPipe) }
	if err := Write(failWriter{io.ErrClosedPipe}, []int{1}, encodeInt, isBroken); err != nil {
		t.Fatalf("broken pipe should be swallowed, got %v", err)
	}
	if err := Write(failWriter{io.ErrShortWrite}, []int{1}, encodeInt, isBroken); err == nil {
		t.Fatalf("other write errors must surface")
	}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
