package ndef

import (
	"fmt"
	"strings"
)

// uriPrefixes is the URI abbreviation table. The first payload byte of a URI
// record indexes this table; code 0x00 means no abbreviation.
var uriPrefixes = [...]string{
	0x00: "",
	0x01: "http://www.",
	0x02: "https://www.",
	0x03: "http://",
	0x04: "https://",
	0x05: "tel:",
	0x06: "mailto:",
	0x07: "ftp://anonymous:anonymous@",
	0x08: "ftp://ftp.",
	0x09: "ftps://",
	0x0A: "sftp://",
	0x0B: "smb://",
	0x0C: "nfs://",
	0x0D: "ftp://",
	0x0E: "dav://",
	0x0F: "news:",
	0x10: "telnet://",
	0x11: "imap:",
	0x12: "rtsp://",
	0x13: "urn:",
	0x14: "pop:",
	0x15: "sip:",
	0x16: "sips:",
	0x17: "tftp:",
	0x18: "btspp://",
	0x19: "btl2cap://",
	0x1A: "btgoep://",
	0x1B: "tcpobex://",
	0x1C: "irdaobex://",
	0x1D: "file://",
	0x1E: "urn:epc:id:",
	0x1F: "urn:epc:tag:",
	0x20: "urn:epc:pat:",
	0x21: "urn:epc:raw:",
	0x22: "urn:epc:",
	0x23: "urn:nfc:",
}

// NewURIRecord builds a well-known URI record, abbreviating the URI with the
// longest matching prefix from the abbreviation table.
func NewURIRecord(uri string) Record {
	code := 0
	for i := 1; i < len(uriPrefixes); i++ {
		p := uriPrefixes[i]
		if strings.HasPrefix(uri, p) && len(p) > len(uriPrefixes[code]) {
			code = i
		}
	}
	payload := make([]byte, 0, 1+len(uri)-len(uriPrefixes[code]))
	payload = append(payload, byte(code))
	payload = append(payload, uri[len(uriPrefixes[code]):]...)
	return Record{TNF: TNFWellKnown, Type: TypeURI, Payload: payload}
}

// URI expands a well-known URI record back to the full URI.
func (r Record) URI() (string, error) {
	if r.TNF != TNFWellKnown || r.Type != TypeURI {
		return "", ErrNotURI
	}
	if len(r.Payload) == 0 {
		return "", fmt.Errorf("%w: empty URI payload", ErrTruncated)
	}
	code := int(r.Payload[0])
	if code >= len(uriPrefixes) {
		return "", fmt.Errorf("%w: 0x%02X", ErrBadPrefix, code)
	}
	return uriPrefixes[code] + string(r.Payload[1:]), nil
}
