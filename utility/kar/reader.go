// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/pierrec/lz4"
)

// Open opens the kar archived from r. It will also check
// if the file is actually a kar archive, will return an error
// when file incorrect.
func Open(r io.ReaderAt) (*Archive, error) {
	prefix := make([]byte, MagicLength+HeaderSizeNumberLength)
	if num, err := r.ReadAt(prefix, 0); num < len(prefix) {
		if err == nil || err == io.EOF {
			err = ErrFileFormat
		}
		return nil, err
	}
	if string(prefix[:MagicLength]) != string(magic[:]) {
		return nil, ErrFileFormat
	}

	headerSize, err := binaryToint64(prefix[MagicLength:])
	if err != nil || headerSize <= 0 || headerSize > MaxHeaderSize {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if num, err := r.ReadAt(headerBytes, int64(len(prefix))); int64(num) < headerSize {
		if err == nil || err == io.EOF {
			err = ErrFileFormat
		}
		return nil, err
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrFileFormat)
	}

	return &Archive{
		reader:    r,
		header:    header,
		dataStart: int64(len(prefix)) + headerSize,
	}, nil
}

// Archive provides concurrent io for a kar file, and can provide
// an io.Reader for each file separately to perform actions on.
type Archive struct {
	reader    io.ReaderAt
	header    Header
	dataStart int64
}

// Header returns the archive header, index included.
func (a *Archive) Header() Header {
	return a.header
}

// Names lists the files in the archive in the order they were added.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.header.Index))
	for _, e := range a.header.Index {
		names = append(names, e.Name)
	}
	return names
}

// ReadAll returns the entire contents of a file with a given name
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != r.Size() {
		return nil, ErrFileFormat
	}
	return data, nil
}

// Open returns a Reader for a file in the Archive. Readers of
// different files, or of the same one, can be used concurrently.
func (a *Archive) Open(name string) (*Reader, error) {
	entry, ok := a.header.Entry(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	section := io.NewSectionReader(a.reader, a.dataStart+entry.Offset, entry.CompressedSize)
	return &Reader{
		entry:  entry,
		reader: lz4.NewReader(section),
	}, nil
}

// Reader is a reader for a single file in an Archive.
// Abstracts away the location that needs to be known.
type Reader struct {
	entry  IndexEntry
	reader io.Reader
}

// Name returns the name of the file being read.
func (r *Reader) Name() string {
	return r.entry.Name
}

// Size returns the uncompressed size of the file.
func (r *Reader) Size() int64 {
	return r.entry.Size
}

// Read reads already decompressed data
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.reader.Read(p)
}
