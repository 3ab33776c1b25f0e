package model

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIError_Error(t *testing.T) {
	e := Wrap(ErrIO, "reading file", fs.ErrNotExist)
	assert.Equal(t, "ERR_IO: reading file: file does not exist", e.Error())

	bare := Wrap(ErrWriteRace, "file changed on disk", nil)
	assert.Equal(t, "ERR_WRITE_RACE: file changed on disk", bare.Error())
}

func TestCLIError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(ErrParse, "parsing input", cause)

	assert.ErrorIs(t, e, cause)

	wrapped := fmt.Errorf("outer: %w", e)
	var ce CLIError
	assert.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, ErrParse, ce.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrVerify, CodeOf(Wrap(ErrVerify, "broken output", nil)))

	nested := fmt.Errorf("stage: %w", Wrap(ErrDB, "opening store", nil))
	assert.Equal(t, ErrDB, CodeOf(nested))
}

func TestResultCounters(t *testing.T) {
	r := Result{Outcomes: []FileOutcome{
		{Path: "a.py", Status: StatusRefactored},
		{Path: "b.py", Status: StatusUnchanged},
		{Path: "c.py", Status: StatusRefactored},
		{Path: "d.py", Status: StatusFailed, Err: Wrap(ErrParse, "bad syntax", nil)},
	}}

	assert.Equal(t, 2, r.Refactored())
	assert.Equal(t, 1, r.Unchanged())
	assert.Equal(t, 1, r.Failed())
	assert.False(t, r.Success())

	ok := Result{Outcomes: []FileOutcome{{Path: "a.py", Status: StatusUnchanged}}}
	assert.True(t, ok.Success())
}
