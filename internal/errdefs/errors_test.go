package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := ForPort(ErrUnknownPort, "GBuffer", "posW")
	assert.ErrorIs(t, err, ErrUnknownPort)
	assert.NotErrorIs(t, err, ErrUnknownPass)

	wrapped := fmt.Errorf("adding edge: %w", err)
	assert.ErrorIs(t, wrapped, ErrUnknownPort)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "GBuffer", got.Pass)
	assert.Equal(t, "posW", got.Port)
}

func TestError_Message(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "pass and port",
			err:  ForPort(ErrUnsatisfiedInput, "SVGFPass", "Color"),
			want: `unsatisfied input: pass "SVGFPass", port "Color"`,
		},
		{
			name: "raw reference",
			err:  New(ErrInvalidName, "expected pass.port").WithRef("nodot"),
			want: `invalid name: reference "nodot": expected pass.port`,
		},
		{
			name: "cycle",
			err:  Cyclic([]string{"A", "B", "A"}),
			want: "cyclic dependency: A -> B -> A",
		},
		{
			name: "cause",
			err:  PassFailed("PathTracer", errors.New("device lost")),
			want: `pass execution failed: pass "PathTracer": device lost`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestPassFailed_ForwardsCause(t *testing.T) {
	cause := errors.New("shader compile failed")
	err := PassFailed("SVGFPass", cause)

	assert.ErrorIs(t, err, ErrPassExecutionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Same(t, cause, errors.Unwrap(err))
}
