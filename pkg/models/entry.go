package models

import (
	"time"
	"unicode/utf8"
)

// Encoding records how a FileBuffer's content was decoded
type Encoding string

const (
	// EncodingText means Data holds UTF-8 text
	EncodingText Encoding = "text"
	// EncodingBinary means Data holds raw bytes
	EncodingBinary Encoding = "binary"
)

// FileBuffer is file content plus the metadata the file engine compares.
// It is supplied by the caller and never modified by an engine.
type FileBuffer struct {
	Name     string
	Size     int64
	MimeType string

	// LastModified is milliseconds since the Unix epoch
	LastModified int64

	Data     []byte
	Encoding Encoding
}

// NewTextBuffer wraps a string as a text-decoded buffer
func NewTextBuffer(name, content string) *FileBuffer {
	return &FileBuffer{
		Name:     name,
		Size:     int64(len(content)),
		MimeType: "text/plain; charset=utf-8",
		Data:     []byte(content),
		Encoding: EncodingText,
	}
}

// NewBinaryBuffer wraps raw bytes as a binary-decoded buffer
func NewBinaryBuffer(name string, data []byte) *FileBuffer {
	return &FileBuffer{
		Name:     name,
		Size:     int64(len(data)),
		MimeType: "application/octet-stream",
		Data:     data,
		Encoding: EncodingBinary,
	}
}

// IsText reports whether the buffer was decoded as text
func (b *FileBuffer) IsText() bool {
	return b.Encoding == EncodingText
}

// Text returns the content as a string. Invalid UTF-8 sequences are kept as-is.
func (b *FileBuffer) Text() string {
	return string(b.Data)
}

// ValidUTF8 reports whether Data is valid UTF-8
func (b *FileBuffer) ValidUTF8() bool {
	return utf8.Valid(b.Data)
}

// ModTime returns LastModified as a time.Time
func (b *FileBuffer) ModTime() time.Time {
	return time.UnixMilli(b.LastModified)
}
