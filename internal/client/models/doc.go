// Package models defines the journal record kinds, their shared envelope
// and the partial-update patches applied by the stores.
//
// Legacy on-disk shapes (a scalar meditation application, a custom-record
// application stored as a string or list with applyChecked as a bool, list
// or index map) are normalized by the UnmarshalJSON methods, so code above
// the storage boundary only ever sees the canonical []ChecklistItem form.
package models
