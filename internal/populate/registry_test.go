package populate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caPanelProfile = `name: ca-panel
description: certificate authority admin panel host
files:
  - path: opt/panel/server.py
    content_type: source-code
    file_type: python
    class: source
    purpose: internal certificate issuance panel
`

func TestRegistryLoadsBuiltins(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	names := r.Names()
	assert.Contains(t, names, "developer-workstation")
	assert.Contains(t, names, "production-server")
	assert.Contains(t, names, "database-server")
	assert.Contains(t, names, "web-server")

	p, err := r.Get("developer-workstation")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Files)
}

func TestRegistryGetUnknown(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Get("mainframe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")
	assert.Contains(t, err.Error(), "developer-workstation")
}

func TestRegistryLoadDirOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ca-panel.yaml"), []byte(caPanelProfile), 0o644))

	// Shadow a builtin with a single-file variant of the same name.
	shadow := `name: web-server
files:
  - path: srv/www/index.html
    content_type: document
    file_type: markdown
    class: document
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web-server.yaml"), []byte(shadow), 0o644))

	r, err := NewRegistry()
	require.NoError(t, err)
	require.NoError(t, r.LoadDir(dir))

	p, err := r.Get("ca-panel")
	require.NoError(t, err)
	assert.Equal(t, "ca-panel", p.Name)

	web, err := r.Get("web-server")
	require.NoError(t, err)
	assert.Len(t, web.Files, 1)
}

func TestRegistryLoadDirRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := `name: broken
files:
  - path: /etc/passwd
    content_type: document
    class: document
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(bad), 0o644))

	r, err := NewRegistry()
	require.NoError(t, err)
	assert.Error(t, r.LoadDir(dir))
}

func TestRegistryWatchReloads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ca-panel.yaml"), []byte(caPanelProfile), 0o644))

	r, err := NewRegistry()
	require.NoError(t, err)
	require.NoError(t, r.Watch(dir))
	defer r.Stop()

	p, err := r.Get("ca-panel")
	require.NoError(t, err)
	require.Len(t, p.Files, 1)

	updated := caPanelProfile + `  - path: opt/panel/panel.log
    content_type: log
    file_type: application-log
    class: log
    after: opt/panel/server.py
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ca-panel.yaml"), []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		p, err := r.Get("ca-panel")
		return err == nil && len(p.Files) == 2
	}, 5*time.Second, 20*time.Millisecond)
}
