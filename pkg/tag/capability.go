package tag

// Capability describes what a detected tag supports.
type Capability uint8

const (
	// CapabilityNone - tag does not speak NDEF.
	CapabilityNone Capability = 0

	// CapabilityReadOnly - NDEF tag that cannot be written.
	CapabilityReadOnly Capability = 1

	// CapabilityReadWrite - NDEF tag supporting read and write.
	CapabilityReadWrite Capability = 2
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapabilityNone:
		return "NONE"
	case CapabilityReadOnly:
		return "READ_ONLY"
	case CapabilityReadWrite:
		return "READ_WRITE"
	default:
		return "UNKNOWN"
	}
}

// SupportsRead reports whether NDEF data can be read from the tag.
func (c Capability) SupportsRead() bool {
	return c == CapabilityReadOnly || c == CapabilityReadWrite
}

// SupportsWrite reports whether NDEF data can be written to the tag.
func (c Capability) SupportsWrite() bool {
	return c == CapabilityReadWrite
}
