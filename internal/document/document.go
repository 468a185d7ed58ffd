// Package document holds Document, an opaque JSON value that is forwarded
// to clients byte-for-byte. Artist metadata, lyric analysis and Last.fm
// payloads have no fixed schema here, and keeping the raw bytes preserves
// the source key order.
package document

import "bytes"

// Document is a raw JSON value. The zero value encodes as an empty object.
type Document []byte

// Empty returns an empty JSON object.
func Empty() Document {
	return Document("{}")
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(d)) == 0 {
		return []byte("{}"), nil
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler by keeping a copy of the input.
func (d *Document) UnmarshalJSON(raw []byte) error {
	*d = append((*d)[:0], raw...)
	return nil
}

// IsObject reports whether the document is a JSON object.
func (d Document) IsObject() bool {
	return firstByte(d) == '{'
}

// IsArray reports whether the document is a JSON array.
func (d Document) IsArray() bool {
	return firstByte(d) == '['
}

// String returns the raw JSON text.
func (d Document) String() string {
	b, _ := d.MarshalJSON()
	return string(b)
}

func firstByte(d Document) byte {
	t := bytes.TrimLeft(d, " \t\r\n")
	if len(t) == 0 {
		return 0
	}
	return t[0]
}
