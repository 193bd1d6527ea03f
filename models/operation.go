// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "net/http"

// Operation is the remote operation still owed to the server for a record.
type Operation string

const (
	// OperationUnspecified lets the record service pick Create or Update
	// from the record's current state.
	OperationUnspecified Operation = ""

	// OperationCreate is replayed as POST /api/{collection}.
	OperationCreate Operation = "create"

	// OperationUpdate is replayed as PUT /api/{collection}/{id}.
	OperationUpdate Operation = "update"

	// OperationDelete is replayed as DELETE /api/{collection}/{id}.
	OperationDelete Operation = "delete"
)

// Method returns the HTTP method used to replay the operation.
// It returns an empty string for OperationUnspecified and unknown values.
func (o Operation) Method() string {
	switch o {
	case OperationCreate:
		return http.MethodPost
	case OperationUpdate:
		return http.MethodPut
	case OperationDelete:
		return http.MethodDelete
	default:
		return ""
	}
}

// Valid reports whether o is one of Create, Update or Delete.
func (o Operation) Valid() bool {
	return o.Method() != ""
}

func (o Operation) String() string {
	if o == OperationUnspecified {
		return "none"
	}
	return string(o)
}
