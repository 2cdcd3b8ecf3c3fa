package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMatching(t *testing.T) {
	cause := errors.New("bad json")
	err := fmt.Errorf("loading: %w", &ValidationError{Table: "Diaries", ID: "d1", Reason: "decode data", Err: cause})

	assert.ErrorIs(t, err, ErrInvalidData)
	assert.ErrorIs(t, err, cause)

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "d1", ve.ID)
	assert.Equal(t, "Diaries d1: decode data: bad json", ve.Error())
}

func TestValidationErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{"reason only", &ValidationError{Reason: "missing pane type"}, "missing pane type"},
		{"table and reason", &ValidationError{Table: "Images", Reason: "bad size"}, "Images: bad size"},
		{"full", &ValidationError{Table: "Diaries", ID: "d1", Reason: "bad version"}, "Diaries d1: bad version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrInvalidData)
		})
	}
}

func TestRegistrationError(t *testing.T) {
	err := &RegistrationError{Identifier: "base:text", DataKey: "color", Reason: "kind text cannot bind integer"}
	assert.ErrorIs(t, err, ErrRegistration)
	assert.Equal(t, `register pane base:text: field "color": kind text cannot bind integer`, err.Error())

	noKey := &RegistrationError{Identifier: "bad", Reason: "invalid identifier", Err: ErrInvalidIdentifier}
	assert.Equal(t, "register pane bad: invalid identifier", noKey.Error())
	assert.ErrorIs(t, noKey, ErrRegistration)
	assert.ErrorIs(t, noKey, ErrInvalidIdentifier)
	assert.NotErrorIs(t, err, ErrInvalidIdentifier)
}

func TestConstraintError(t *testing.T) {
	err := &ConstraintError{Op: "resize grid", Reason: "column count below 1"}
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.Equal(t, "resize grid: column count below 1", err.Error())
}
