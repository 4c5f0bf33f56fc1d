// Package input loads comparison inputs from disk or a stream into
// models.FileBuffer values, enforcing the size cap before content is read.
package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/cheggaaa/pb/v3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/sdejongh/diffdeck/pkg/compare"
	"github.com/sdejongh/diffdeck/pkg/models"
)

// progressThreshold is the smallest input that gets a progress bar
const progressThreshold = 8 * 1024 * 1024

// Options controls how an input is loaded
type Options struct {
	// MaxSize rejects larger inputs; zero disables the cap
	MaxSize int64

	// Encoding forces text or binary decoding; empty means detect from content
	Encoding models.Encoding

	// Progress, when set, receives a progress bar for large inputs
	Progress io.Writer
}

// Stat returns the metadata of path without reading its content.
// The returned buffer has no Data and is only suitable for metadata comparison.
func Stat(path string) (*models.FileBuffer, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &compare.Error{Kind: compare.KindInputMissing, Message: "input does not exist: " + path, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if info.IsDir() {
		return nil, &compare.Error{Kind: compare.KindTypeMismatch, Message: "input is a directory: " + path}
	}

	return &models.FileBuffer{
		Name:         filepath.Base(path),
		Size:         info.Size(),
		LastModified: info.ModTime().UnixMilli(),
	}, nil
}

// Load reads the file at path
func Load(path string, opts Options) (*models.FileBuffer, error) {
	meta, err := Stat(path)
	if err != nil {
		return nil, err
	}
	if err := compare.CheckSize(meta, opts.MaxSize); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if opts.Progress != nil && meta.Size >= progressThreshold {
		bar := pb.New64(meta.Size)
		bar.SetTemplate(pb.Full)
		bar.SetWriter(opts.Progress)
		bar.Start()
		defer bar.Finish()
		r = bar.NewProxyReader(f)
	}

	buf, err := readAll(r, meta.Name, opts.MaxSize, meta.Size)
	if err != nil {
		return nil, err
	}
	buf.LastModified = meta.LastModified
	decode(buf, opts.Encoding)
	return buf, nil
}

// LoadReader reads an input from r, such as stdin. LastModified is left zero.
func LoadReader(name string, r io.Reader, opts Options) (*models.FileBuffer, error) {
	buf, err := readAll(r, name, opts.MaxSize, 0)
	if err != nil {
		return nil, err
	}
	decode(buf, opts.Encoding)
	return buf, nil
}

func readAll(r io.Reader, name string, maxSize, sizeHint int64) (*models.FileBuffer, error) {
	if maxSize > 0 {
		r = io.LimitReader(r, maxSize+1)
	}

	var data bytes.Buffer
	if sizeHint > 0 {
		data.Grow(int(sizeHint))
	}
	if _, err := data.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	buf := &models.FileBuffer{Name: name, Size: int64(data.Len()), Data: data.Bytes()}
	if err := compare.CheckSize(buf, maxSize); err != nil {
		return nil, err
	}
	return buf, nil
}

// decode sets the MIME type and picks the encoding
func decode(buf *models.FileBuffer, force models.Encoding) {
	mtype := mimetype.Detect(buf.Data)
	buf.MimeType = mtype.String()

	switch force {
	case models.EncodingText, models.EncodingBinary:
		buf.Encoding = force
	default:
		buf.Encoding = models.EncodingBinary
		if isText(mtype) && utf8.Valid(buf.Data) && bytes.IndexByte(buf.Data, 0) < 0 {
			buf.Encoding = models.EncodingText
		}
	}
}

// isText reports whether m is text/plain or one of its descendants
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
