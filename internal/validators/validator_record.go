// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/MKhiriev/offsync/models"
)

const (
	FieldCollection       = "collection"
	FieldRecordID         = "id"
	FieldPayload          = "payload"
	FieldPendingOperation = "pending_operation"
	FieldFilterField      = "filter_field"
	FieldLimit            = "limit"
	FieldSettingKey       = "key"
	FieldSettingValue     = "value"
)

const (
	maxCollectionLen = 64
	maxRecordIDLen   = 256
	maxSettingKeyLen = 128
)

var (
	collectionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// filter fields become JSON paths: dotted segments of word characters
	filterFieldPattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

	settingKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
)

// RecordValidator implements the [Validator] interface for records, list
// filters and settings. Both value and pointer forms are accepted, and the
// optional field names restrict validation to a subset.
type RecordValidator struct{}

func NewRecordValidator() Validator {
	return &RecordValidator{}
}

// Validate dispatches on the dynamic type of obj:
//   - models.Record / *models.Record
//   - models.ListFilter / *models.ListFilter
//   - models.Setting / *models.Setting
//
// Returns ErrUnsupportedType for anything else.
func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Record:
		return v.validateRecord(ctx, value, fields...)
	case *models.Record:
		return v.validateRecord(ctx, *value, fields...)

	case models.ListFilter:
		return v.validateFilter(ctx, value, fields...)
	case *models.ListFilter:
		return v.validateFilter(ctx, *value, fields...)

	case models.Setting:
		return v.validateSetting(ctx, value, fields...)
	case *models.Setting:
		return v.validateSetting(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *RecordValidator) validateRecord(_ context.Context, record models.Record, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCollection, FieldRecordID, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if !IsValidCollection(record.Collection) {
				return ErrInvalidCollection
			}
		case FieldRecordID:
			if !IsValidRecordID(record.ID) {
				return ErrInvalidRecordID
			}
		case FieldPayload:
			if !IsJSONObject(record.Payload) {
				return ErrInvalidPayload
			}
		case FieldPendingOperation:
			if record.PendingOperation != models.OperationUnspecified && !record.PendingOperation.Valid() {
				return ErrInvalidOperation
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RecordValidator) validateFilter(_ context.Context, filter models.ListFilter, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldFilterField, FieldLimit}
	}

	for _, f := range fields {
		switch f {
		case FieldFilterField:
			if filter.Field != "" && !filterFieldPattern.MatchString(filter.Field) {
				return ErrInvalidFilterField
			}
		case FieldLimit:
			if filter.Limit < 0 {
				return ErrInvalidLimit
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RecordValidator) validateSetting(_ context.Context, setting models.Setting, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldSettingKey, FieldSettingValue}
	}

	for _, f := range fields {
		switch f {
		case FieldSettingKey:
			if len(setting.Key) == 0 || len(setting.Key) > maxSettingKeyLen || !settingKeyPattern.MatchString(setting.Key) {
				return ErrInvalidSettingKey
			}
		case FieldSettingValue:
			if !json.Valid(setting.Value) {
				return ErrInvalidSettingJSON
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// IsValidCollection reports whether name can be used as a collection: it
// becomes a URL path segment, so only letters, digits, '_' and '-' are allowed.
func IsValidCollection(name string) bool {
	return len(name) > 0 && len(name) <= maxCollectionLen && collectionPattern.MatchString(name)
}

// IsValidRecordID reports whether id is non-empty valid UTF-8 without
// control characters.
func IsValidRecordID(id string) bool {
	if id == "" || len(id) > maxRecordIDLen || !utf8.ValidString(id) {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsJSONObject reports whether payload is a syntactically valid JSON object.
func IsJSONObject(payload []byte) bool {
	payload = bytes.TrimSpace(payload)
	return len(payload) > 0 && payload[0] == '{' && gjson.ValidBytes(payload)
}
