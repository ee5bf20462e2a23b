// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package loaders provides the mesh loaders attached to render.Resources.
// Mesh streams may be compressed, a ".lz4" or ".zst" suffix on the
// locator name tells the loader to decompress first, so "ship.dae.zst"
// is a zstd compressed Collada document.
package loaders

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// Compression suffixes understood by Unwrap.
const (
	LZ4Suffix  = ".lz4"
	ZstdSuffix = ".zst"
)

// ErrUnsupported is returned by loaders given a stream they don't accept.
var ErrUnsupported = errors.New("unsupported mesh format")

// Format returns the extension of name once compression suffixes
// are removed, "ship.dae.lz4" gives ".dae".
func Format(name string) string {
	for {
		ext := path.Ext(name)
		switch ext {
		case LZ4Suffix, ZstdSuffix:
			name = strings.TrimSuffix(name, ext)
		default:
			return strings.ToLower(ext)
		}
	}
}

type zstdReader struct {
	*zstd.Decoder
}

func (z zstdReader) Close() error {
	z.Decoder.Close()
	return nil
}

// Unwrap returns a reader that decompresses r according to the
// compression suffixes of name. The returned reader has to be closed.
func Unwrap(name string, r io.Reader) (io.ReadCloser, error) {
	var closers []io.Closer
	for {
		ext := path.Ext(name)
		switch ext {
		case LZ4Suffix:
			r = lz4.NewReader(r)
		case ZstdSuffix:
			dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
			if err != nil {
				closeAll(closers)
				return nil, err
			}
			closers = append(closers, zstdReader{dec})
			r = dec
		default:
			return &unwrapped{Reader: r, closers: closers}, nil
		}
		name = strings.TrimSuffix(name, ext)
	}
}

type unwrapped struct {
	io.Reader
	closers []io.Closer
}

func (u *unwrapped) Close() error {
	closeAll(u.closers)
	u.closers = nil
	return nil
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i].Close()
	}
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func open(ctx context.Context, name string, data io.Reader) (io.Reader, io.Closer, error) {
	r, err := Unwrap(name, data)
	if err != nil {
		return nil, nil, err
	}
	return &contextReader{ctx: ctx, r: r}, r, nil
}
