// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidCollection  = errors.New("invalid collection name")
	ErrInvalidRecordID    = errors.New("invalid record id")
	ErrInvalidPayload     = errors.New("payload must be a JSON object")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrInvalidFilterField = errors.New("invalid filter field")
	ErrInvalidLimit       = errors.New("limit must not be negative")
	ErrInvalidSettingKey  = errors.New("invalid setting key")
	ErrInvalidSettingJSON = errors.New("setting value must be valid JSON")
)
