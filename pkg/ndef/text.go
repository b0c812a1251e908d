package ndef

import "fmt"

// Text record status byte layout.
const (
	// textUTF16 flags a UTF-16 encoded text payload.
	textUTF16 = 0x80

	// textLangMask masks the language code length.
	textLangMask = 0x3F

	// MaxLanguageLength is the longest language code a text record can carry.
	MaxLanguageLength = 63
)

// NewTextRecord builds a well-known Text record with the given IANA language
// code. Text is always encoded as UTF-8.
func NewTextRecord(text, language string) (Record, error) {
	if language == "" || len(language) > MaxLanguageLength {
		return Record{}, fmt.Errorf("%w: language code %q", ErrBadText, language)
	}
	payload := make([]byte, 0, 1+len(language)+len(text))
	payload = append(payload, byte(len(language)))
	payload = append(payload, language...)
	payload = append(payload, text...)
	return Record{TNF: TNFWellKnown, Type: TypeText, Payload: payload}, nil
}

// Text extracts the text and language code from a well-known Text record.
func (r Record) Text() (text, language string, err error) {
	if r.TNF != TNFWellKnown || r.Type != TypeText {
		return "", "", ErrNotText
	}
	if len(r.Payload) == 0 {
		return "", "", fmt.Errorf("%w: empty payload", ErrBadText)
	}
	status := r.Payload[0]
	if status&textUTF16 != 0 {
		return "", "", fmt.Errorf("%w: UTF-16 text not supported", ErrBadText)
	}
	langLen := int(status & textLangMask)
	if 1+langLen > len(r.Payload) {
		return "", "", fmt.Errorf("%w: language length %d exceeds payload", ErrBadText, langLen)
	}
	return string(r.Payload[1+langLen:]), string(r.Payload[1 : 1+langLen]), nil
}
