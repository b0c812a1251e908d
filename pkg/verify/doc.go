// Package verify implements the verification flow that turns a tag tap
// into a revealed member profile.
//
// # Flow
//
// The Orchestrator owns a single flow state machine:
//
//	Idle -> Scanning -> TagDetected -> PinEntry -> Verifying -> Verified -> ProfileRevealed
//
// Every active phase may move to Error with a Reason, and Reset returns
// the flow to Idle from anywhere. ProfileRevealed and Error are terminal. State is
// published as immutable FlowState snapshots; observers registered with
// OnStateChange see every transition in order.
//
// A verification Session exists exactly while the flow is in PinEntry,
// Verifying, or Verified. Leaving those phases in any direction destroys
// the session, so a new flow always starts with a fresh scan.
//
// # Collaborators
//
// External effects are injected: PinDelivery requests out-of-band PIN
// delivery and checks entered PINs, ProfileFetch retrieves profiles, and
// Feedback receives haptic/UI cues. The live path reads a sharer's tag
// through a tag.ReaderWriter; the scripted path needs no hardware at all.
//
// # Simulation
//
// StartSimulation replays a complete flow against scripted collaborators.
// A Schedule fixes the timeline; the orchestrator paces tag detection and
// digit entry from it while ScriptedDelivery and ScriptedProfiles pace
// their round trips from the same values. The PIN is derived with
// HKDF-SHA256 from the sharer ID, so a given configuration replays the
// identical transition sequence and digit values on every run.
//
// # Cancellation
//
// Every pause and round trip honours context cancellation. Reset cancels
// the in-flight flow; collaborator results that arrive after a reset are
// discarded without transitions or feedback.
package verify
