package ndef

import "fmt"

// Message is an ordered sequence of records.
type Message struct {
	Records []Record
}

// Encode serializes the message. The first record carries the message-begin
// flag and the last carries message-end.
func Encode(m Message) ([]byte, error) {
	if len(m.Records) == 0 {
		return nil, ErrEmptyMessage
	}
	var out []byte
	var err error
	for i, rec := range m.Records {
		out, err = rec.encode(out, i == 0, i == len(m.Records)-1)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return out, nil
}

// Decode parses records from data until the message-end flag. Bytes after
// the final record are ignored.
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return Message{}, ErrEmptyMessage
	}
	var msg Message
	off := 0
	for {
		if off >= len(data) {
			return Message{}, fmt.Errorf("%w: no message-end record", ErrTruncated)
		}
		rec, flags, n, err := decodeRecord(data[off:])
		if err != nil {
			return Message{}, fmt.Errorf("record %d: %w", len(msg.Records), err)
		}
		msg.Records = append(msg.Records, rec)
		off += n
		if flags.me {
			return msg, nil
		}
	}
}
