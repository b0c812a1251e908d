// Package ndef implements the NDEF record and message binary format.
//
// NDEF (NFC Data Exchange Format) packs one or more typed records into a
// single byte blob stored on a tag. This package covers the subset TapMeet
// tags use: well-known URI and Text records plus external records.
//
// # Record Layout
//
// Each record starts with a header byte holding the MB/ME/CF/SR/IL flags and
// the 3-bit type name format, followed by the type length, the payload
// length (1 byte in short-record form, 4 bytes big-endian otherwise), the
// optional ID length, and then the type, ID, and payload bytes.
//
// # Message Framing
//
// Encode sets the message-begin flag on the first record and message-end on
// the last. Decode consumes records until message-end and ignores trailing
// bytes. Chunked records (CF set, or TNF unchanged) are not supported and
// fail decoding.
//
// # Well-Known Records
//
// URI records abbreviate common prefixes through a 36-entry table; the first
// payload byte selects the prefix. Text records carry a status byte (bit 7
// selects UTF-16, the low six bits give the language code length), the
// language code, and the text. This codec emits UTF-8 only and rejects
// UTF-16 payloads.
package ndef
