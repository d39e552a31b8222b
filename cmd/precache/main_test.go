package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := parseArgs(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, ".", opts.Root)
	require.Equal(t, "service_worker.js", opts.SWPath)
	require.Equal(t, "precache-manifest.json", opts.Out)
	require.Equal(t, int64(1_000_000), opts.MaxSize)
	require.Equal(t, []string{"web", "assets"}, opts.ScanPaths)
}

func TestParseArgs_Overrides(t *testing.T) {
	opts, err := parseArgs([]string{"--root", "/srv/site", "--max-size=10", "--scan-paths", "static, img ,", "extra"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "/srv/site", opts.Root)
	require.Equal(t, int64(10), opts.MaxSize)
	require.Equal(t, []string{"static", "img", "extra"}, opts.ScanPaths)
}

func TestRun_ExitCodes(t *testing.T) {
	root := t.TempDir()
	var stdout, stderr bytes.Buffer

	require.Equal(t, 2, run([]string{"--root", root}, &stdout, &stderr))
	require.FileExists(t, filepath.Join(root, "precache-manifest.json"))

	require.NoError(t, os.WriteFile(filepath.Join(root, "service_worker.js"), []byte("const PRECACHE_URLS = [];"), 0o644))
	require.Equal(t, 0, run([]string{"--root", root}, &stdout, &stderr))

	require.NoError(t, os.WriteFile(filepath.Join(root, "service_worker.js"), []byte("nothing here"), 0o644))
	require.Equal(t, 1, run([]string{"--root", root}, &stdout, &stderr))

	require.Equal(t, 1, run([]string{"--max-size", "big"}, &stdout, &stderr))
}
