package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDsCarryPrefix(t *testing.T) {
	id := NewCameraRequestID()
	assert.True(t, strings.HasPrefix(id, PrefixCameraRequest+"_"))
	require.NoError(t, Validate(id, PrefixCameraRequest))

	assert.NotEqual(t, NewFrameID(), NewFrameID())
}

func TestValidateRejects(t *testing.T) {
	assert.Error(t, Validate(NewSessionID(), PrefixFrame))
	assert.Error(t, Validate("not-an-id", PrefixFrame))
}
