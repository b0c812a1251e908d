// Package virtualtag runs TapMeet tags over TCP and mDNS so the live
// flow works without NFC hardware.
//
// A Host serves one tag image: it listens on TCP, answers the three tag
// commands (capability query, read, write), and advertises itself as a
// _tapmeet-tag._tcp service so readers can find it the way a phone finds
// a tag in the field. A Reader implements tag.ReaderWriter on top of the
// same wire: Connect browses for hosts and dials the one it finds.
//
// Discovery deliberately mirrors NFC field conditions: no host in range
// is tag.ErrNoTag, more than one distinct host is tag.ErrMultipleTags,
// so ceremony code exercises the same ambiguity handling it needs for
// real hardware.
//
// # Wire format
//
// Both directions use frames of a 4-byte big-endian length prefix and a
// payload capped at 64 KiB. A request frame is one command byte followed
// by command data (only writes carry data). A response frame is one
// status byte followed by response data (capability and read replies).
package virtualtag
