// Package imageref turns an attached image file into an inline data reference.
//
// Each decode is tied to a request token. Starting a new request cancels the
// one in flight, and results for superseded tokens are reported as stale so
// callers can drop them.
package imageref

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxBytes caps the size of an attachment.
const DefaultMaxBytes = 10 << 20

var ErrTooLarge = errors.New("image too large")

type Result struct {
	Token string
	Ref   string
	Err   error
}

type Loader struct {
	timeout  time.Duration
	maxBytes int64

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
}

// NewLoader returns a loader. A zero timeout waits indefinitely.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{timeout: timeout, maxBytes: DefaultMaxBytes}
}

// WithMaxBytes sets the attachment size cap. Non-positive values keep the default.
func (l *Loader) WithMaxBytes(n int64) *Loader {
	if n > 0 {
		l.maxBytes = n
	}
	return l
}

// Begin starts a decode of path and returns its token along with the work to
// run off the UI goroutine.
func (l *Loader) Begin(ctx context.Context, path string) (string, func() Result) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	token := uuid.NewString()
	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	l.current = token
	l.cancel = cancel
	limit := l.maxBytes
	l.mu.Unlock()

	return token, func() Result {
		defer cancel()
		ref, err := DecodeLimit(ctx, path, limit)
		return Result{Token: token, Ref: ref, Err: err}
	}
}

// Current reports whether token belongs to the latest request.
func (l *Loader) Current(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return token != "" && token == l.current
}

// Finish clears token if it is still the latest request.
func (l *Loader) Finish(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token == l.current {
		l.current = ""
		l.cancel = nil
	}
}

// Cancel abandons the in-flight request, if any.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.current = ""
	l.cancel = nil
}

// Decode reads path and encodes it as a data reference, up to DefaultMaxBytes.
func Decode(ctx context.Context, path string) (string, error) {
	return DecodeLimit(ctx, path, DefaultMaxBytes)
}

// DecodeLimit is Decode with an explicit size cap checked before reading.
func DecodeLimit(ctx context.Context, path string, maxBytes int64) (string, error) {
	path = expandHome(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if info.Size() > maxBytes {
		return "", fmt.Errorf("%s is %s, limit %s: %w", filepath.Base(path),
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(maxBytes)), ErrTooLarge)
	}

	type read struct {
		data []byte
		err  error
	}
	done := make(chan read, 1)
	go func() {
		data, err := os.ReadFile(path)
		done <- read{data, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("read image: %w", r.err)
		}
		mt := mimetype.Detect(r.data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return "", fmt.Errorf("%s is %s, not an image", filepath.Base(path), mt.String())
		}
		return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(r.data), nil
	}
}

// Describe gives a short label for a reference, suitable for a card.
func Describe(ref string) string {
	if !strings.HasPrefix(ref, "data:") {
		return filepath.Base(ref)
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return "embedded image"
	}
	mime, _, _ := strings.Cut(meta, ";")
	size := base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload, "=")
	return fmt.Sprintf("embedded %s · %s", mime, humanize.Bytes(uint64(size)))
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
