package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/modcompat/errors"
	"github.com/wippyai/modcompat/host"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "host.toml", `
remove-names = ["Stardew Valley"]

[[assembly]]
name = "StardewValley"

[[assembly.type]]
name = "StardewValley.Game1"

[[assembly.type.method]]
name = "get_player"
returns = "StardewValley.Farmer"
static = true
`)
	path := writeFile(t, dir, FileName, `
platform = "linux"
host = "host.toml"
strict = true
log-level = "debug"

[[field-to-property]]
type = "StardewValley.Game1"
field = "player"

[[field-to-property]]
type = "StardewValley.Farmer"
field = "money"
instance = true
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "linux", c.Platform)
	assert.True(t, c.Strict)
	assert.True(t, filepath.IsAbs(c.Dir))

	lvl, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	rws := c.Rewriters()
	require.Len(t, rws, 2)
	assert.Equal(t, "Game1.player field", rws[0].NounPhrase())
	assert.Equal(t, "Farmer.money field", rws[1].NounPhrase())

	amap, err := c.AssemblyMap()
	require.NoError(t, err)
	assert.Equal(t, host.Linux, amap.Platform)
	_, ok := amap.FindMethod("StardewValley.Game1", "get_player")
	assert.True(t, ok)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, `platform = "windows"`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.Strict)
	assert.Empty(t, c.Rewriters())

	amap, err := c.AssemblyMap()
	require.NoError(t, err)
	assert.Equal(t, []string{host.GameAssemblyWindows, "Microsoft.Xna.Framework"}, amap.Targets())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `platform = `},
		{"platform", `platform = "plan9"`},
		{"log level", `log-level = "chatty"`},
		{"rule without field", "[[field-to-property]]\ntype = \"StardewValley.Game1\"\n"},
		{"rule without type", "[[field-to-property]]\nfield = \"player\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), FileName, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput}), err.Error())
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}))
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	_, err := c.AssemblyMap()
	assert.NoError(t, err)
}
