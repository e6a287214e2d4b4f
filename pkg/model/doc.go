// Package model holds the value types shared by the contact form workflow:
// field identities, per-field validation results, the submission payload
// snapshot and the UI state enumeration.
//
// The types carry no behaviour beyond small helpers so they can be passed
// between the validator set, the orchestrator, the page binding and the
// submission channels without import cycles.
package model
