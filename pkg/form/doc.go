// Package form orchestrates the contact form: a Registry of controls, a
// validation.Set, an Annotator for inline messages, a View for page level
// state, and a submission.Channel for delivery.
//
// The orchestrator is independent of how controls are backed. The same
// workflow runs over a parsed HTML page (pkg/page), over JSON values
// (RegistryFromValues with a Collector) and over a terminal session
// (pkg/renderers/tui).
package form
