package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/framegraph/internal/app"
	"github.com/vk/framegraph/internal/publish"
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/internal/testutil"
	"github.com/vk/framegraph/modules/accumulate"
	"github.com/vk/framegraph/modules/core"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Frames    []publish.Frame
}

// RunIntegrationTest writes files under a temporary graph directory, runs
// the app against it and collects everything it published. The stock
// libraries are always available next to extra.
func RunIntegrationTest(t *testing.T, files map[string]string, configure func(*app.Config), extra ...registry.Library) *HarnessResult {
	t.Helper()

	graphDir := filepath.Join(t.TempDir(), "graph")
	require.NoError(t, os.Mkdir(graphDir, 0o755))
	for name, content := range files {
		filePath := filepath.Join(graphDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := &app.Config{
		GraphPath: graphDir,
		Frames:    1,
		Width:     8,
		Height:    8,
		Workers:   4,
		LogFormat: "text",
	}
	if configure != nil {
		configure(cfg)
	}

	libs := append([]registry.Library{core.Library(), accumulate.Library()}, extra...)
	testApp, logs := app.SetupAppTest(t, cfg, libs...)
	mem := &publish.Memory{}
	testApp.SetPublisher(mem)

	err := testApp.Run(context.Background())
	return &HarnessResult{
		LogOutput: logs.String(),
		Err:       err,
		App:       testApp,
		Frames:    mem.Frames(),
	}
}

// testLibrary bundles SimpleModules under the name "TestPasses".
func testLibrary(modules ...*testutil.SimpleModule) registry.Library {
	lib := registry.Library{Name: "TestPasses"}
	for _, m := range modules {
		lib.Modules = append(lib.Modules, m)
	}
	return lib
}
