package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch/internal/core/domain/services"
)

func TestFailurePolicy_Resolve(t *testing.T) {
	checkErr := errors.New("store unavailable")

	assert.ErrorIs(t, services.FailClosed.Resolve(checkErr), checkErr)
	assert.NoError(t, services.FailOpen.Resolve(checkErr))
	assert.NoError(t, services.FailClosed.Resolve(nil))

	assert.Equal(t, "fail-closed", services.FailClosed.String())
	assert.Equal(t, "fail-open", services.FailOpen.String())
}
