package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPayloadRoundTrip(t *testing.T) {
	e := AlreadyDone(306, "submission %d already %s", 1, "accepted")
	assert.Equal(t, "already_done(306): submission 1 already accepted", e.Error())
	assert.Equal(t, "err|kind:already_done|code:306|msg:submission 1 already accepted", e.Payload())

	back, ok := ParseErrorPayload(Unauthorized(5, "caller hive:bob is not the admin").Payload())
	require.True(t, ok)
	assert.Equal(t, KindUnauthorized, back.Kind)
	assert.Equal(t, uint16(5), back.Code)
	assert.Equal(t, "caller hive:bob is not the admin", back.Msg)

	_, ok = ParseErrorPayload("ok")
	assert.False(t, ok)
}

func TestErrorIsAndAs(t *testing.T) {
	wrapped := fmt.Errorf("sub call: %w", InsufficientValue(802, "allowance"))
	assert.True(t, errors.Is(wrapped, InsufficientValue(802, "")))
	assert.False(t, errors.Is(wrapped, InsufficientValue(801, "")))
	assert.Equal(t, KindInsufficientValue, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	e := AsError(errors.New("store gone"))
	assert.Equal(t, KindInvalidState, e.Kind)
	assert.Equal(t, CodeSubCall, e.Code)
	assert.Nil(t, AsError(nil))
}

func TestParseKind(t *testing.T) {
	for k := KindUnauthorized; k <= KindInvalidInput; k++ {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindUnknown, ParseKind("nope"))
}
