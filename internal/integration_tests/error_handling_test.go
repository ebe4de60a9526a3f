package integration_tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/resource"
	"github.com/vk/framegraph/internal/testutil"
)

func TestErrorHandling_InvalidHCLIsRejected(t *testing.T) {
	t.Parallel()

	result := RunIntegrationTest(t, map[string]string{"main.hcl": `pass "Clear" "A" {`}, nil)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to load graph description")
	assert.Nil(t, result.App.Engine())
}

func TestErrorHandling_GraphErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hcl     string
		wantErr error
		msg     string
	}{
		{
			name: "unknown pass type",
			hcl: `
				graph "G" { libraries = ["CorePasses"] }
				pass "Raytrace" "RT" {}
			`,
			wantErr: errdefs.ErrUnknownPassType,
		},
		{
			name: "cycle",
			hcl: `
				graph "G" { libraries = ["CorePasses"] }
				pass "Scale" "A" {}
				pass "Scale" "B" {}
				edge {
					from = "A.out"
					to   = "B.in"
				}
				edge {
					from = "B.out"
					to   = "A.in"
				}
				output "B.out" {}
			`,
			wantErr: errdefs.ErrCyclicDependency,
		},
		{
			name: "edge into an output port",
			hcl: `
				graph "G" { libraries = ["CorePasses"] }
				pass "Clear" "A" {}
				pass "Clear" "B" {}
				edge {
					from = "A.out"
					to   = "B.out"
				}
			`,
			wantErr: errdefs.ErrPortDirectionMismatch,
			msg:     "main.hcl:7,",
		},
		{
			name: "unknown output",
			hcl: `
				graph "G" { libraries = ["CorePasses"] }
				pass "Clear" "A" {}
				output "A.color" {}
			`,
			wantErr: errdefs.ErrUnknownPort,
			msg:     "main.hcl:4,5-",
		},
		{
			name: "config out of range",
			hcl: `
				graph "G" { libraries = ["CorePasses"] }
				pass "Blend" "Mix" {
					weight = 3
				}
			`,
			wantErr: errdefs.ErrInvalidConfig,
			msg:     "weight must be within [0, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := RunIntegrationTest(t, map[string]string{"main.hcl": tt.hcl}, nil)
			require.Error(t, result.Err)
			assert.ErrorIs(t, result.Err, tt.wantErr)
			if tt.msg != "" {
				assert.Contains(t, result.Err.Error(), tt.msg)
			}
			assert.Empty(t, result.Frames)
		})
	}
}

// A failing pass aborts the frame and leaves the previous outputs intact.
func TestErrorHandling_PassFailureFailsRun(t *testing.T) {
	t.Parallel()

	boom := errors.New("shader compile failed")
	lib := testLibrary(&testutil.SimpleModule{
		Type:  "Broken",
		Ports: []pass.Port{testutil.Out("out", resource.FormatR32Float)},
		Fn:    func(context.Context, *pass.RenderData) error { return boom },
	})
	src := `
		graph "G" { libraries = ["TestPasses"] }
		pass "Broken" "B" {}
		output "B.out" {}
	`

	result := RunIntegrationTest(t, map[string]string{"main.hcl": src}, nil, lib)

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, errdefs.ErrPassExecutionFailed)
	assert.ErrorIs(t, result.Err, boom)
	assert.Contains(t, result.Err.Error(), "frame 1 failed")

	e, ok := errdefs.As(result.Err)
	require.True(t, ok)
	assert.Equal(t, "B", e.Pass)

	_, err := result.App.Engine().Outputs()
	assert.ErrorIs(t, err, errdefs.ErrNoExecutionYet)
}
