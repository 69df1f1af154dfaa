package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindSentinel(t *testing.T) {
	errTaken := New(KindSlotTaken, "slot already booked")
	wrapped := fmt.Errorf("create appointment: %w", errTaken)

	assert.True(t, errors.Is(wrapped, ErrSlotTaken))
	assert.True(t, errors.Is(wrapped, errTaken))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, New(KindSlotTaken, "another message")))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", New(KindForbidden, "nope"), KindForbidden},
		{"wrapped", fmt.Errorf("outer: %w", New(KindInvalidState, "done")), KindInvalidState},
		{"plain", errors.New("connection reset"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOfHidesInfrastructureErrors(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	assert.Equal(t, "Something went wrong", MessageOf(cause))

	err := Wrap(KindNotFound, "doctor not found", cause)
	assert.Equal(t, "doctor not found", MessageOf(err))
	assert.Equal(t, "doctor not found: dial tcp: i/o timeout", err.Error())
	assert.ErrorIs(t, err, cause)
}
