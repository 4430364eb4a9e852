package main

import (
	"errors"
	"net/http"
	"testing"

	"github.com/lychee-technology/nilability"
	"github.com/stretchr/testify/assert"
)

func TestParseRecordPath(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		want        recordPath
		expectError bool
	}{
		{name: "record", path: "/api/v1/records/Post", want: recordPath{record: "Post"}},
		{name: "trailing slash", path: "/api/v1/records/Post/", want: recordPath{record: "Post"}},
		{name: "attribute", path: "/api/v1/records/Post/attributes/title", want: recordPath{record: "Post", kind: "attributes", field: "title"}},
		{name: "relationship", path: "/api/v1/records/Post/relationships/author", want: recordPath{record: "Post", kind: "relationships", field: "author"}},
		{name: "empty", path: "/api/v1/records/", expectError: true},
		{name: "unknown resource", path: "/api/v1/records/Post/columns/title", expectError: true},
		{name: "two segments", path: "/api/v1/records/Post/attributes", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRecordPath(tt.path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusForError(nilability.NewRecordNotFoundError("Post")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusForError(nilability.NewMalformedMetadataError("x", "bad", nil)))
	assert.Equal(t, http.StatusInternalServerError, statusForError(errors.New("boom")))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("NILABILITY_TEST_FLAG", "false")
	assert.False(t, getEnvBool("NILABILITY_TEST_FLAG", true))
	t.Setenv("NILABILITY_TEST_FLAG", "maybe")
	assert.True(t, getEnvBool("NILABILITY_TEST_FLAG", true))
	assert.Equal(t, 7, getEnvInt("NILABILITY_TEST_UNSET", 7))
}
