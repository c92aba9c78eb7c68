package reverse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mleduque/modda/internal/manifest"
)

func TestParseWeiduLogGroupsConsecutiveEntriesByTP2(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "weidu.log")
	content := "~SETUP-MYMOD.TP2~ #0 #0 // My Mod: Component A\n" +
		"~SETUP-MYMOD.TP2~ #0 #1 // My Mod: Component B\n" +
		"~SETUP-OTHERMOD.TP2~ #0 #0 // Other Mod: Component A\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	modules, err := ParseWeiduLog(logPath)
	require.NoError(t, err)
	require.Len(t, modules, 2)

	assert.Equal(t, "mymod", modules[0].Name)
	require.Len(t, modules[0].Components.Selectors, 2)
	assert.Equal(t, 0, modules[0].Components.Selectors[0].Index)
	assert.Equal(t, "My Mod: Component A", modules[0].Components.Selectors[0].ComponentName)
	assert.Equal(t, 1, modules[0].Components.Selectors[1].Index)

	assert.Equal(t, "othermod", modules[1].Name)
	require.Len(t, modules[1].Components.Selectors, 1)
}

func TestParseWeiduLogIgnoresMalformedLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "weidu.log")
	content := "not a weidu log line\n~SETUP-MYMOD.TP2~ #0 #0 // comp\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	modules, err := ParseWeiduLog(logPath)
	require.NoError(t, err)
	require.Len(t, modules, 1)
}

func TestParseWeiduConfExtractsLangDir(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "weidu.conf")
	content := "# weidu config\nlang_dir = en_US\nlog = setup.log\n"
	require.NoError(t, os.WriteFile(confPath, []byte(content), 0o644))

	langDir, err := ParseWeiduConf(confPath)
	require.NoError(t, err)
	assert.Equal(t, "en_US", langDir)
}

func TestGuessLangPreferences(t *testing.T) {
	assert.Equal(t, []manifest.LangPreference{"Francais", "French"}, GuessLangPreferences("fr_FR"))
	assert.Nil(t, GuessLangPreferences("xx_XX"))
}

func TestGenerateBuildsManifestFromGameDirectory(t *testing.T) {
	gameDir := t.TempDir()
	logContent := "~SETUP-MYMOD.TP2~ #0 #0 // My Mod: Component A\n"
	require.NoError(t, os.WriteFile(filepath.Join(gameDir, "weidu.log"), []byte(logContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(gameDir, "weidu.conf"), []byte("lang_dir = en_US\n"), 0o644))

	m, err := Generate(gameDir)
	require.NoError(t, err)
	assert.Equal(t, "en_US", m.Global.LangDir)
	assert.Equal(t, []manifest.LangPreference{"American English", "English"}, m.Global.LangPreferences)
	require.Len(t, m.Modules, 1)
	assert.Equal(t, "mymod", m.Modules[0].Name)
}
