package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"audiofetch/pkg/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args in a clean environment
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		categories = nil
		dryRun = false
		showURLs = false
		configFile = ""
		historyPath = ""
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCatalogCommand(t *testing.T) {
	out, err := execute(t, "catalog", "--category", "npc", "--urls")
	require.NoError(t, err)

	assert.Contains(t, out, "Site: https://opengameart.org\n")
	assert.Contains(t, out, "npc (9 queries)")
	assert.Contains(t, out, "search  monster growl")
	assert.Contains(t, out, "page    https://opengameart.org/content/skeleton-sounds")
	assert.Contains(t, out, "https://opengameart.org/art-search-advanced?keys=monster%20growl&")
	assert.NotContains(t, out, "ambiance")
}

func TestCatalogCommandUnknownCategory(t *testing.T) {
	_, err := execute(t, "catalog", "--category", "music")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "music"`)
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audiofetch.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to")
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestRunDryRun(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/art-search-advanced" {
			fmt.Fprint(w, `<div data-ogg-url="/sites/default/files/audio_preview/cry.ogg"></div>`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "audiofetch.yaml")
	config := fmt.Sprintf(`site:
  base_url: %s
catalog:
  - name: npc
    queries: ["bat screech"]
`, srv.URL)
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))

	output := filepath.Join(dir, "audio")
	out, err := execute(t, "run", "--config", path, "--dry-run", "--output", output, "--delay", "0")
	require.NoError(t, err)

	assert.Contains(t, out, "[DRY RUN]")
	assert.Contains(t, out, "would download 1 of 1 candidates")
	assert.Contains(t, out, "~ npc/bat_screech_1_cry.ogg")
	assert.Contains(t, out, "Dry run finished.")
	assert.Equal(t, int32(1), hits.Load(), "only the search page is fetched")
	assert.NoDirExists(t, output)
}

func TestHistoryShowsFilesOnDisk(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(filepath.Join(output, "npc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(output, "npc", "bat_screech_1_cry.ogg"), []byte("x"), 0644))

	db := filepath.Join(dir, "history.db")
	store, err := history.Open(db)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	path := filepath.Join(dir, "audiofetch.yaml")
	config := fmt.Sprintf(`output:
  base_directory: %s
catalog:
  - name: npc
    queries: ["bat screech"]
  - name: ambiance
    queries: ["wind"]
`, output)
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))

	out, err := execute(t, "history", "--config", path, "--history", db)
	require.NoError(t, err)

	assert.Contains(t, out, "No downloads recorded")
	assert.Contains(t, out, "On disk ("+output+")")
	assert.Contains(t, out, "npc: 1 files")
	assert.Contains(t, out, "ambiance: 0 files")
}
