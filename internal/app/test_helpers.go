package app

import (
	"os"
	"testing"

	"github.com/vk/framegraph/internal/hcl_adapter"
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. It reads graph
// descriptions through the HCL loader and logs at debug level into the
// returned buffer.
func SetupAppTest(t *testing.T, cfg *Config, libs ...registry.Library) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg, hcl_adapter.NewLoader(), libs...)

	t.Cleanup(func() {
		if os.Getenv("FG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
