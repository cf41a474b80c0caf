// Package session holds the state of one consultation session.
//
// # Overview
//
// A Session owns the active mode, the ordered message list, the input draft
// and the busy flag. Exactly one Session exists per running UI; it is created
// by the entry point and handed to the controller and the renderer.
//
// # Message Lifecycle
//
// Messages are append-only and strictly chronological. The only in-place
// change is the Pending to Resolved transition of an assistant placeholder:
//
//  1. SubmitUserMessage appends the user message and a pending assistant
//     placeholder carrying a fresh CorrelationID, and sets busy.
//  2. ResolveAssistantMessage (or ResolveAssistantError) replaces the
//     placeholder with that CorrelationID and clears busy.
//
// A resolution whose CorrelationID is no longer present, for example after
// Clear, is ignored. Busy is cleared regardless.
//
// # Busy Gating
//
// SubmitUserMessage refuses to start a second consultation while one is in
// flight, so at most one completion request exists at any time no matter
// what the renderer does.
//
// # Observation
//
// Renderers read state through Snapshot and register for change
// notifications with Subscribe. Listeners run after the mutation is
// complete and the lock released, so they may call back into the Session.
package session
