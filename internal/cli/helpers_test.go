package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adrg/xdg"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
	"github.com/whiskeyjimb/espim/internal/config"
)

// isolateState points the log file at a temp dir for the duration of t.
func isolateState(t *testing.T) {
	t.Helper()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()
}

// newPluginRepo creates a local git repository with one commit per content
// value, tagging commit i as v1.<i>.0.
func newPluginRepo(t *testing.T, contents ...string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for i, c := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte(c), 0o644))
		_, err := wt.Add("data.txt")
		require.NoError(t, err)
		h, err := wt.Commit("commit "+c, &gogit.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
		})
		require.NoError(t, err)
		_, err = repo.CreateTag(fmt.Sprintf("v1.%d.0", i), h, nil)
		require.NoError(t, err)
	}
	return dir
}

// indexYAML renders name, version, url triples as an index document.
func indexYAML(fields ...string) string {
	var b strings.Builder
	for i := 0; i+2 < len(fields); i += 3 {
		fmt.Fprintf(&b, "- name: %q\n  version: %q\n  url: %q\n", fields[i], fields[i+1], fields[i+2])
	}
	return b.String()
}

type testEnv struct {
	pluginDir string
	cacheDir  string
	server    *httptest.Server

	mu     sync.Mutex
	status int
	body   string
}

func newTestEnv(t *testing.T, body string) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("install links need mklink elevation on windows")
	}
	isolateState(t)

	root := t.TempDir()
	e := &testEnv{
		pluginDir: filepath.Join(root, "plugins"),
		cacheDir:  filepath.Join(root, "cache"),
		status:    http.StatusOK,
		body:      body,
	}
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		defer e.mu.Unlock()
		w.WriteHeader(e.status)
		_, _ = w.Write([]byte(e.body))
	}))
	t.Cleanup(e.server.Close)
	return e
}

func (e *testEnv) set(status int, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
	e.body = body
}

func (e *testEnv) dirFlags() []string {
	return []string{
		"--plugin-dir", e.pluginDir,
		"--cache-dir", e.cacheDir,
		"--index-url", e.server.URL,
	}
}

// run executes one command line against a fresh root command, feeding stdin
// to the purge prompt. It returns everything written to stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(config.DefaultConfig())

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, e.dirFlags()...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) linkPath(name string) string {
	return filepath.Join(e.pluginDir, "[ESPIM] "+name)
}

func (e *testEnv) repoPath(name string) string {
	return filepath.Join(e.cacheDir, "plugins", name)
}
