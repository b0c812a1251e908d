// Package tag implements TapMeet tag payloads and the tag proximity ceremony.
//
// # Payload
//
// A TapMeet tag carries exactly three NDEF records: a connect URI
// (https://tapmeet.app/connect/{memberId}), the owner's display name as a
// Text record, and an external record (app.tapmeet:member) whose JSON body
// holds the member ID, a write timestamp, and the schema version.
//
// Decoding prefers the external record; when it is missing or malformed the
// member ID falls back to the path segment after "connect" in the first URI
// record. Individually malformed records are skipped so a damaged record
// does not take the whole payload down.
//
// # Session
//
// A Session drives one read or write ceremony against hardware behind the
// ReaderWriter interface:
//
//	Idle -> Connecting -> QueryingCapability -> Reading|Writing -> Finished
//
// When several tags confuse the field, the session announces the condition
// and reconnects after a short delay. Cancellation (context or the person
// dismissing the hardware prompt) finishes the session with a Cancelled
// outcome, which is distinct from failure. The hardware is always closed
// before Run returns.
package tag
