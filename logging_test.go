package vkrs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreLoggerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	log := NewCoreLogger(&buf)
	log.Infof("device %s", "gpu0")
	log.Warnf("slow")
	log.Errorf("lost")

	out := buf.String()
	assert.Contains(t, out, "INFO: ")
	assert.Contains(t, out, "device gpu0")
	assert.Contains(t, out, "WARNING: ")
	assert.Contains(t, out, "ERROR: ")
	assert.Contains(t, out, "logging_test.go")
}

func TestFileLoggerWritesThreeFiles(t *testing.T) {
	dir := t.TempDir()
	log, err := NewFileLogger(dir)
	require.NoError(t, err)
	log.Infof("hello")
	log.Errorf("bad")
	log.Close()

	info, err := os.ReadFile(filepath.Join(dir, "info_log.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "hello")

	errs, err := os.ReadFile(filepath.Join(dir, "error_log.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "bad")

	assert.FileExists(t, filepath.Join(dir, "warn_log.txt"))
}

func TestFileLoggerBadDir(t *testing.T) {
	_, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "dir"))
	assert.Error(t, err)
}
