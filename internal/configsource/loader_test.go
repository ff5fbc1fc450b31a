package configsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BarePathReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: {}\nworkflows: {}\n"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, doc.Steps)
}

func TestLoad_FileSchemeStripsPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: {}\n"), 0o644))

	doc, err := Load("file:" + path)
	require.NoError(t, err)
	assert.NotNil(t, doc.Steps)
}

func TestLoad_HTTPSchemeUnsupported(t *testing.T) {
	_, err := Load("https://example.com/workflow.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme not supported")
}

func TestLoad_ClasspathSchemeUnsupported(t *testing.T) {
	_, err := Load("classpath:workflow.yaml")
	require.Error(t, err)
}
