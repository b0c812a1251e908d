package ndef

// NewExternalRecord builds an NFC Forum external record. The type name is
// domain-namespaced, for example "app.tapmeet:member".
func NewExternalRecord(typeName string, payload []byte) Record {
	return Record{TNF: TNFExternal, Type: typeName, Payload: payload}
}

// IsExternal reports whether the record is an external record with the given
// type name.
func (r Record) IsExternal(typeName string) bool {
	return r.TNF == TNFExternal && r.Type == typeName
}
