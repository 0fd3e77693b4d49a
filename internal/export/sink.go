package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ContentType is the media type of every export.
const ContentType = "text/csv;charset=utf-8"

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Blob is a transient in-memory file handed to a Sink. It is only valid for
// the duration of Sink.Deliver.
type Blob struct {
	name     string
	buf      *bytes.Buffer
	released bool
}

func acquire(name, content string) *Blob {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	buf.WriteString(content)
	return &Blob{name: name, buf: buf}
}

func (b *Blob) release() {
	if b.released {
		return
	}
	b.released = true
	b.buf.Reset()
	bufPool.Put(b.buf)
	b.buf = nil
}

// Name is the download file name.
func (b *Blob) Name() string { return b.name }

// Size is the content length in bytes.
func (b *Blob) Size() int {
	if b.buf == nil {
		return 0
	}
	return b.buf.Len()
}

// Reader returns a fresh reader over the content.
func (b *Blob) Reader() io.Reader {
	if b.buf == nil {
		return bytes.NewReader(nil)
	}
	return bytes.NewReader(b.buf.Bytes())
}

// Released reports whether the blob's buffer was returned to the pool.
func (b *Blob) Released() bool { return b.released }

// Sink receives a finished export.
type Sink interface {
	Deliver(ctx context.Context, b *Blob) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, b *Blob) error

func (f SinkFunc) Deliver(ctx context.Context, b *Blob) error { return f(ctx, b) }

// Download wraps content in a Blob, hands it to sink and releases the blob on
// every path, including a panicking sink.
func Download(ctx context.Context, sink Sink, filename, content string) error {
	b := acquire(filename, content)
	defer b.release()

	if err := sink.Deliver(ctx, b); err != nil {
		return fmt.Errorf("deliver %s: %w", filename, err)
	}
	return nil
}

// HTTPSink writes the export as an attachment response.
type HTTPSink struct {
	W http.ResponseWriter
}

func (s HTTPSink) Deliver(_ context.Context, b *Blob) error {
	h := s.W.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.Name()))
	h.Set("Content-Length", fmt.Sprint(b.Size()))
	s.W.WriteHeader(http.StatusOK)
	_, err := io.Copy(s.W, b.Reader())
	return err
}

// FileSink writes the export into Dir.
type FileSink struct {
	Dir string
}

func (s FileSink) Deliver(_ context.Context, b *Blob) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.Dir, b.Name()))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, b.Reader()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ObjectStore is the subset of a blob store the archive needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader) error
}

// ArchiveSink keeps a copy of every export under
// exports/<entity>/<timestamp>-<file>.
type ArchiveSink struct {
	Store ObjectStore
	Now   func() time.Time
}

// ArchiveKey returns the object key for filename at t.
func ArchiveKey(filename string, t time.Time) string {
	entity := strings.TrimSuffix(filename, filepath.Ext(filename))
	return fmt.Sprintf("exports/%s/%s-%s", entity, t.UTC().Format("20060102T150405Z"), filename)
}

func (s ArchiveSink) Deliver(ctx context.Context, b *Blob) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Store.PutObject(ctx, ArchiveKey(b.Name(), now()), ContentType, b.Reader())
}

// MultiSink delivers to every sink in order and joins their errors.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, b *Blob) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BestEffort wraps a secondary sink so its failures are logged, not returned.
func BestEffort(s Sink, logger *slog.Logger) Sink {
	return SinkFunc(func(ctx context.Context, b *Blob) error {
		if err := s.Deliver(ctx, b); err != nil {
			logger.WarnContext(ctx, "secondary export sink failed", "filename", b.Name(), "error", err)
		}
		return nil
	})
}
