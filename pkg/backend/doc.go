// Package backend implements the TapMeet service collaborators over
// JSON/HTTP.
//
// A Client speaks to the verification service and doubles as both flow
// collaborators: PIN delivery (create a verification session, check an
// entered PIN) and profile fetch. Request bodies carry the identifiers;
// responses are plain JSON documents.
//
// The service distinguishes unknown sessions and unknown members with
// 404 responses, surfaced here as ErrUnknownSession and ErrUnknownMember.
// Every other non-2xx status wraps ErrService. All round trips honour
// context cancellation.
package backend
