// Package iohelper reads HTTP response bodies with a size cap and returns
// connections to the pool once a check is done with them.
package iohelper

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/shieldscan/shieldscan/pkg/defaults"
)

// drainLimit caps how much of an unread body is discarded before close.
const drainLimit int64 = 64 * 1024

// ReadBody reads at most maxSize bytes from r. A nil reader yields an
// empty slice.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault reads with defaults.BufferMax as the cap.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, defaults.BufferMax)
}

// ReadText reads a response body as a string and closes it.
// A read error is logged and whatever arrived before it is returned.
func ReadText(resp *http.Response, logger *slog.Logger) string {
	if resp == nil {
		return ""
	}
	defer DrainAndClose(resp.Body)

	data, err := ReadBodyDefault(resp.Body)
	if err != nil && logger != nil {
		logger.Debug("body read failed",
			slog.String("url", resp.Request.URL.String()),
			slog.String("error", err.Error()))
	}
	return string(data)
}

// DrainAndClose discards what is left of r (up to 64KB) and closes it so
// the keep-alive connection can be reused. Always returns nil, for defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, drainLimit))
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
