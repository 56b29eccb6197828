// Package ui contains the Bubble Tea program that shows the panel in a
// terminal. The Model owns no panel state of its own: it forwards keys to
// the encoder queue, drives hmi.Session on a timer, and renders the
// session's canvas.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are
//     routed through a typed handler registry so each tea.Msg is handled by
//     a focused function.
//   - Key presses become encoder events (internal/ui/input.go). They are
//     queued, not applied: the next tick polls them, the same way a knob
//     interrupt fills the queue between dispatcher cycles. Back is the one
//     exception and goes straight to Session.Back.
//   - A tickMsg runs one dispatcher cycle via Session.Tick and schedules the
//     next tick.
//
// Backend interactions:
//   - A backend.Watcher polls the printer and the SD stand-in. Update waits
//     for its events and hands them to Apply, which feeds the dispatcher so
//     the status and media stores stay current. A media change is passed on
//     to the session so the file list and any running job react.
//   - Poll errors are kept per kind and shown on the status line until the
//     next successful poll of that kind.
//
// Headless deployments (framebuffer plus GPIO knob) skip Bubble Tea and call
// Step and Apply from their own loop.
package ui
