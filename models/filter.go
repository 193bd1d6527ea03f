// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ListFilter narrows a record listing. Zero value lists everything.
type ListFilter struct {
	// Synced keeps only records whose Synced flag equals *Synced.
	Synced *bool

	// Failed keeps only records whose SyncFailed flag equals *Failed.
	Failed *bool

	// Field and Value select records whose payload field equals Value,
	// e.g. Field "caseId", Value "c1". Dotted paths address nested fields.
	Field string
	Value string

	// ExcludeTombstones drops records pending a remote delete from the result.
	ExcludeTombstones bool

	// Limit caps the number of returned records when positive.
	Limit int
}

// Bool returns a pointer to b, handy for ListFilter literals.
func Bool(b bool) *bool {
	return &b
}
