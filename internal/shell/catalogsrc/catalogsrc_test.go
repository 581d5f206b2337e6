package catalogsrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/stackwizard/internal/core/catalog"
	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const giteaCompose = `services:
  gitea:
    image: gitea/gitea:1.21
    ports:
      - "3000:3000"
    depends_on:
      - db
  db:
    image: postgres:16-alpine
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gitea.yml", giteaCompose)
	path := writeFile(t, dir, "catalog.yml", `
templates:
  - id: caddy
    name: Caddy
    category: web
    icon: globe
    tags: [web, proxy]
    defaults:
      name: caddy
      image: "caddy:2"
      ports:
        - {host: 80, container: 80}
compose:
  - meta: {id: gitea, name: Gitea, category: stack, icon: git}
    file: gitea.yml
  - meta: {id: whoami, name: Whoami, category: web}
    content: |
      services:
        whoami:
          image: traefik/whoami
`)

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	caddy, ok := c.Get("caddy")
	require.True(t, ok)
	seed := caddy.Seed()
	assert.Equal(t, "caddy:2", seed.Image)
	assert.Equal(t, domain.DefaultMemoryGiB, seed.MemoryGiB)
	assert.Equal(t, domain.DefaultRestartPolicy, seed.RestartPolicy)

	gitea, ok := c.Get("gitea")
	require.True(t, ok)
	assert.True(t, gitea.IsStack())
	assert.Len(t, gitea.Stack, 2)

	whoami, ok := c.Get("whoami")
	require.True(t, ok)
	assert.False(t, whoami.IsStack())
}

func TestLoadFile_IncludeBuiltin(t *testing.T) {
	path := writeFile(t, t.TempDir(), "catalog.yml", `
include_builtin: true
templates:
  - id: caddy
    name: Caddy
    defaults: {name: caddy, image: "caddy:2"}
`)
	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, catalog.Builtin().Len()+1, c.Len())
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "templates: [\n"},
		{"empty", "templates: []\n"},
		{"negative memory", `
templates:
  - id: x
    name: X
    defaults: {name: x, image: x, memory_gib: -1}
`},
		{"duplicate id", `
templates:
  - {id: x, name: X, defaults: {name: x, image: x}}
  - {id: x, name: Y, defaults: {name: y, image: y}}
`},
		{"compose without source", `
compose:
  - meta: {id: x, name: X}
`},
		{"compose both sources", `
compose:
  - meta: {id: x, name: X}
    file: a.yml
    content: "services: {}"
`},
		{"compose missing file", `
compose:
  - meta: {id: x, name: X}
    file: missing.yml
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "catalog.yml", tt.content)
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_DegradesToBuiltin(t *testing.T) {
	builtin := catalog.Builtin().Len()

	assert.Equal(t, builtin, Load("", nil).Len())
	assert.Equal(t, builtin, Load(filepath.Join(t.TempDir(), "missing.yml"), nil).Len())

	bad := writeFile(t, t.TempDir(), "catalog.yml", "::not yaml::\n\t-")
	assert.Equal(t, builtin, Load(bad, nil).Len())
}
