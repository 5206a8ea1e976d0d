package tferr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaMigrationErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &SchemaMigrationError{Key: "x", TypeTag: "demo.bucket", Detail: "bad shape", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "x")
	assert.Contains(t, err.Error(), "demo.bucket")
}

func TestProviderErrorUnwraps(t *testing.T) {
	cause := errors.New("platform rejected request")
	err := NewProviderError("bucket-a", "create", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "bucket-a")
	assert.Contains(t, err.Error(), "create")
}

func TestDuplicateKeyErrorMessage(t *testing.T) {
	err := &DuplicateKeyError{Key: "x"}
	assert.Contains(t, err.Error(), "x")
}
