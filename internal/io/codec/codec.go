// Package codec holds what the session document formats share: the Writer
// contract the archive drives and XML encoding helpers.
package codec

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Writer serializes one prepared document to its destination
type Writer interface {
	Write() error
}

// WriterFunc adapts a function to Writer
type WriterFunc func() error

// Write calls f
func (f WriterFunc) Write() error {
	return f()
}

// EncodeXML writes an XML header followed by v, indented
func EncodeXML(w io.Writer, v interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// DecodeXML reads one XML document into v
func DecodeXML(r io.Reader, v interface{}) error {
	dec := xml.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode XML: %w", err)
	}
	return nil
}
