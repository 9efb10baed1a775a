package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := WrapError(cause, ErrFileWrite, "cannot write chunk artifact").
		WithContext("chunk", 3)

	assert.Contains(t, err.Error(), "[FileWrite] cannot write chunk artifact")
	assert.Contains(t, err.Error(), "chunk=3")
	assert.Contains(t, err.Error(), "cause: disk full")
	assert.ErrorIs(t, err, cause)
}

func TestIsErrorType(t *testing.T) {
	t.Parallel()

	err := NewError(ErrIncompleteBatch, "not done")
	assert.True(t, IsErrorType(err, ErrIncompleteBatch))
	assert.False(t, IsErrorType(err, ErrConfig))

	wrapped := fmt.Errorf("stage failed: %w", err)
	assert.True(t, IsErrorType(wrapped, ErrIncompleteBatch))

	assert.False(t, IsErrorType(errors.New("plain"), ErrIncompleteBatch))
}

func TestAdvice(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Advice(NewError(ErrIncompleteBatch, "x")), "translate stage")
	assert.Contains(t, Advice(NewError(ErrConfig, "x")), "environment variables")
	assert.Contains(t, Advice(NewError(ErrAPI, "x")), "API key")
	assert.Empty(t, Advice(errors.New("plain")))
	assert.Empty(t, Advice(NewError(ErrUnknown, "x")))
}

func TestLockProject(t *testing.T) {
	t.Parallel()

	dir := testProjectDir(t, 3)
	p := New(testConfig("https://unused.example.com"))

	proj, _, err := p.loadSource(dir)
	require.NoError(t, err)

	unlock, err := lockProject(proj)
	require.NoError(t, err)

	// a second holder is refused while the lock is held
	_, err = lockProject(proj)
	require.Error(t, err)

	unlock()

	unlock2, err := lockProject(proj)
	require.NoError(t, err)
	unlock2()
}
