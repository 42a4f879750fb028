package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/learngrid/internal/app"
	"github.com/specialistvlad/learngrid/internal/config"
	"github.com/specialistvlad/learngrid/internal/curriculum"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes files, keyed by relative path, under a fresh temporary
// directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Stats     curriculum.SeedStats
	Err       error
	App       *app.App
}

// RunIntegrationTest writes files to a temporary directory, builds an
// in-memory App with debug logging, and seeds it from that directory.
func RunIntegrationTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, config.DefaultConfig())
}

// RunIntegrationTestWithContext is RunIntegrationTest with a caller supplied
// context and configuration. The App is closed when the test ends.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg *config.Config) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, files)
	cfg.Log.Level = "debug"
	logBuffer := &SafeBuffer{}

	testApp, err := app.New(ctx, logBuffer, cfg)
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}
	t.Cleanup(func() { _ = testApp.Close() })

	stats, err := testApp.LoadCurriculum(dir)

	if os.Getenv("LEARNGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Stats:     stats,
		Err:       err,
		App:       testApp,
	}
}
