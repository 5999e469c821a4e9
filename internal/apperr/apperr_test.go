package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("addRow", "row", "name %q taken", "A")))
	assert.True(t, IsConflict(Conflict("move", "workstation", "occupied")))
	assert.True(t, IsNotFound(NotFound("get", "booking", 7)))
	assert.True(t, IsDependency(Dependency("list", "lab", errors.New("down"))))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := Conflict("createBooking", "booking", "slot taken")
	wrapped := fmt.Errorf("batch: %w", base)
	assert.True(t, IsConflict(wrapped))
	assert.True(t, IsConflict(errors.Join(errors.New("other"), wrapped)))
}

func TestWithOp(t *testing.T) {
	err := WithOp("deleteRow", NotFound("getRow", "row", 3))
	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "deleteRow", e.Op)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "deleteRow: row: id 3 not found", err.Error())

	plain := WithOp("listLabs", errors.New("connection refused"))
	assert.True(t, IsDependency(plain))
	assert.Nil(t, WithOp("x", nil))
}
