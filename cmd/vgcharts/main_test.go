package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkd0g/vgcharts/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VGCHARTS_OUTPUT_DIR", filepath.Join(dir, "site"))
	t.Setenv("VGCHARTS_THEME_FILE", filepath.Join(dir, "theme.yaml"))
	t.Setenv("VGCHARTS_DATA_URL", "")
	t.Setenv("VGCHARTS_LOG_LEVEL", "error")
	return dir
}

func TestBuild(t *testing.T) {
	dir := setup(t)
	cfgPath := filepath.Join(dir, "none.yaml")

	out, err := run(t, "--config", cfgPath, "build", "--theme", "light")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 9 files")
	assert.Contains(t, out, "vl_f4  rendered")

	_, err = os.Stat(filepath.Join(dir, "site", "specs", "vl_v1.vl.json"))
	assert.NoError(t, err)
}

func TestSpec(t *testing.T) {
	dir := setup(t)
	out, err := run(t, "--config", filepath.Join(dir, "none.yaml"), "spec", "vl_v4")
	require.NoError(t, err)

	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &spec))
	assert.Equal(t, float64(300), spec["height"])

	_, err = run(t, "--config", filepath.Join(dir, "none.yaml"), "spec", "vl_nope")
	assert.Error(t, err)
}

func TestThemeToggle(t *testing.T) {
	dir := setup(t)
	cfg := filepath.Join(dir, "none.yaml")

	out, err := run(t, "--config", cfg, "theme", "show")
	require.NoError(t, err)
	assert.Equal(t, "dark", strings.TrimSpace(out))

	out, err = run(t, "--config", cfg, "theme", "toggle")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "light", lines[0])
	assert.Equal(t, "toggle pressed=true, saved to "+filepath.Join(dir, "theme.yaml"), lines[1])

	out, err = run(t, "--config", cfg, "theme", "show")
	require.NoError(t, err)
	assert.Equal(t, "light", strings.TrimSpace(out))

	index, err := os.ReadFile(filepath.Join(dir, "site", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `data-theme="light"`)
}

func TestConfigInit(t *testing.T) {
	dir := setup(t)
	cfgPath := filepath.Join(dir, "conf", "vgcharts.yaml")

	out, err := run(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, cfgPath, strings.TrimSpace(out))

	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "output_dir: "+filepath.Join(dir, "site"))

	saved, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Title, saved.Title)

	_, err = run(t, "--config", cfgPath, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "--config", cfgPath, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	dir := setup(t)
	cfg := filepath.Join(dir, "none.yaml")

	out, err := run(t, "--config", cfg, "validate", "--name", "A", "--email", "bad", "--message", "short")
	assert.ErrorIs(t, err, errInvalidForm)
	assert.Contains(t, out, "email: Please enter a valid email address.")
	assert.Contains(t, out, "message: Message should be at least 10 characters.")
	assert.Contains(t, out, "name: Please enter your name (2+ characters).")

	out, err = run(t, "--config", cfg, "validate", "--name", "Al", "--email", "a@b.co", "--message", "0123456789")
	require.NoError(t, err)
	assert.Contains(t, out, "Thanks!")
}

func TestPreview(t *testing.T) {
	dir := setup(t)
	dataset := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(dataset, []byte(`Platform,Genre,Year,Global_Sales,NA_Sales,EU_Sales,JP_Sales,Other_Sales
PSP,Action,2008,1.5,0.6,0.45,0.3,0.15
PSP,Action,N/A,0.5,0.2,0.15,0.1,0.05
`), 0o644))

	out, err := run(t, "--config", filepath.Join(dir, "none.yaml"), "preview", "vl_f2", "--dataset", dataset)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"Year":2008`)
}
