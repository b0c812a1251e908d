package tag

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/ndef"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/version"
)

// Protocol constants for TapMeet tag payloads.
const (
	// ExternalType is the NFC external record type carrying member data.
	ExternalType = "app.tapmeet:member"

	// ConnectBaseURL prefixes the fallback URI record.
	ConnectBaseURL = "https://tapmeet.app/connect/"

	// PayloadVersion is the schema version written into new payloads.
	PayloadVersion = version.Current

	// DefaultLanguage is the language code for display-name text records.
	DefaultLanguage = "en"
)

// Payload errors.
var (
	// ErrEmptyTag indicates the tag carried no NDEF data at all.
	ErrEmptyTag = errors.New("tag is empty")

	// ErrInvalidFormat indicates no record yielded a member identifier.
	ErrInvalidFormat = errors.New("no member identifier in tag data")

	// ErrMissingMemberID indicates an encode attempt without a member ID.
	ErrMissingMemberID = errors.New("member ID required")
)

// Payload is the member identity a TapMeet tag carries.
type Payload struct {
	// MemberID identifies the tag owner.
	MemberID string

	// DisplayName is the owner's display name (optional).
	DisplayName string
}

// memberRecord is the JSON body of the external record.
type memberRecord struct {
	MemberID  string `json:"memberId"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// EncodePayload builds the canonical three-record message for a member:
// connect URI, display name, member external record. The timestamp records
// when the payload was written.
func EncodePayload(p Payload, now time.Time) ([]byte, error) {
	if p.MemberID == "" {
		return nil, ErrMissingMemberID
	}

	body, err := json.Marshal(memberRecord{
		MemberID:  p.MemberID,
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   PayloadVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("encode member record: %w", err)
	}

	text, err := ndef.NewTextRecord(p.DisplayName, DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("encode display name: %w", err)
	}

	return ndef.Encode(ndef.Message{Records: []ndef.Record{
		ndef.NewURIRecord(ConnectBaseURL + p.MemberID),
		text,
		ndef.NewExternalRecord(ExternalType, body),
	}})
}

// DecodePayload extracts the member identity from raw tag bytes.
//
// The first parsable external record with a non-empty member ID wins.
// Without one, the member ID falls back to the path segment following
// "connect" in the first URI record. The first decodable text record
// contributes the display name.
func DecodePayload(raw []byte) (Payload, error) {
	if len(raw) == 0 {
		return Payload{}, ErrEmptyTag
	}

	msg, err := ndef.Decode(raw)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	var p Payload
	for _, rec := range msg.Records {
		if text, _, err := rec.Text(); err == nil {
			p.DisplayName = text
			break
		}
	}

	for _, rec := range msg.Records {
		if !rec.IsExternal(ExternalType) {
			continue
		}
		var body memberRecord
		if err := json.Unmarshal(rec.Payload, &body); err != nil {
			continue
		}
		if body.MemberID != "" {
			p.MemberID = body.MemberID
			return p, nil
		}
	}

	for _, rec := range msg.Records {
		uri, err := rec.URI()
		if err != nil {
			continue
		}
		if id := memberIDFromURI(uri); id != "" {
			p.MemberID = id
			return p, nil
		}
	}

	return Payload{}, ErrInvalidFormat
}

// memberIDFromURI extracts the identifier following a "connect" path
// segment, or returns empty.
func memberIDFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "connect" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1]
		}
	}
	return ""
}
