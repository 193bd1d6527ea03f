// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/offsync/models"
)

func Test_buildListRecordsQuery(t *testing.T) {
	tests := []struct {
		name         string
		filter       models.ListFilter
		wantContains []string
		wantMissing  []string
		wantArgs     []any
	}{
		{
			name:         "collection only keeps tombstones",
			filter:       models.ListFilter{},
			wantContains: []string{"FROM records", "WHERE collection = ?", "ORDER BY last_modified DESC, id"},
			wantMissing:  []string{"LIMIT", "synced = ?", "json_extract", "pending_operation <>"},
			wantArgs:     []any{"cases"},
		},
		{
			name:         "exclude tombstones",
			filter:       models.ListFilter{ExcludeTombstones: true},
			wantContains: []string{"WHERE collection = ?", "pending_operation <> ?"},
			wantArgs:     []any{"cases", "delete"},
		},
		{
			name:         "synced and failed flags",
			filter:       models.ListFilter{Synced: models.Bool(false), Failed: models.Bool(true)},
			wantContains: []string{"synced = ?", "sync_failed = ?"},
			wantArgs:     []any{"cases", false, true},
		},
		{
			name:         "field equality with limit",
			filter:       models.ListFilter{Field: "caseId", Value: "c1", Limit: 5},
			wantContains: []string{"CAST(json_extract(payload, ?) AS TEXT) = ?", "LIMIT 5"},
			wantArgs:     []any{"cases", "$.caseId", "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildListRecordsQuery("cases", tt.filter)
			require.NoError(t, err)

			for _, part := range tt.wantContains {
				assert.Contains(t, query, part)
			}
			for _, part := range tt.wantMissing {
				assert.False(t, strings.Contains(query, part), "query must not contain %q: %s", part, query)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func Test_buildListRecordsQuery_SelectsAllColumns(t *testing.T) {
	query, _, err := buildListRecordsQuery("cases", models.ListFilter{})
	require.NoError(t, err)

	for _, c := range recordColumns {
		require.Contains(t, query, c)
	}
}
