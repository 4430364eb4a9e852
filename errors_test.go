package nilability

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataError_Error(t *testing.T) {
	assert.Equal(t, "[not_found:RECORD_NOT_FOUND] record Post: record not found", NewRecordNotFoundError("Post").Error())

	err := NewMalformedMetadataError("post.json", "bad kind", nil).WithRecord("Post").WithField("title")
	assert.Equal(t, "[malformed:MALFORMED_METADATA] record Post field 'title': bad kind", err.Error())
	assert.Equal(t, "post.json", err.Details["source"])

	assert.Equal(t, "[unavailable:SOURCE_UNAVAILABLE] metadata source unavailable", NewSourceUnavailableError("s3://b/k", nil).Error())
}

func TestMetadataError_Unwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("load: %w", NewSourceUnavailableError("file://x", cause))

	assert.ErrorIs(t, err, cause)
	assert.False(t, IsSnapshotNotFoundError(err))
	assert.True(t, IsSnapshotNotFoundError(fmt.Errorf("wrap: %w", NewSnapshotNotFoundError("s3://b/k", nil))))
	assert.False(t, IsRecordNotFoundError(cause))
}

func TestNewInvalidOptionError(t *testing.T) {
	err := NewInvalidOptionError(OptionKeyColumnTypes, "sometimes").WithDetail("default", "persisted")
	assert.Equal(t, ErrCodeInvalidOption, err.Code)
	assert.Equal(t, OptionKeyColumnTypes, err.Field)
	assert.Contains(t, err.Message, `"sometimes"`)
	assert.Equal(t, "persisted", err.Details["default"])
}
