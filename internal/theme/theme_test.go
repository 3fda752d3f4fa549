package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStored(t *testing.T) {
	assert.Equal(t, Light, FromStored("light"))
	assert.Equal(t, Dark, FromStored("dark"))
	assert.Equal(t, Dark, FromStored(""))
	assert.Equal(t, Dark, FromStored("LIGHT"))
	assert.Equal(t, Dark, FromStored("sepia"))
}

func TestParse(t *testing.T) {
	th, err := Parse("light")
	require.NoError(t, err)
	assert.Equal(t, Light, th)

	_, err = Parse("sepia")
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestFlip(t *testing.T) {
	assert.Equal(t, Light, Dark.Flip())
	assert.Equal(t, Dark, Light.Flip())
	assert.True(t, Light.Pressed())
	assert.False(t, Dark.Pressed())
}

func TestConfigFor(t *testing.T) {
	light := ConfigFor(Light)
	assert.Nil(t, light.Background)
	assert.Equal(t, "#566079", light.Axis.LabelColor)
	assert.Equal(t, "#111522", light.Axis.TitleColor)
	assert.Equal(t, "rgba(17,21,34,0.12)", light.Axis.GridColor)
	assert.Equal(t, "rgba(17,21,34,0.18)", light.Axis.DomainColor)
	assert.Equal(t, light.Axis.DomainColor, light.Axis.TickColor)
	assert.Equal(t, "#111522", light.Title.Color)
	assert.Equal(t, 14, light.Title.FontSize)

	dark := ConfigFor(Dark)
	assert.Equal(t, "#a7b0c0", dark.Legend.LabelColor)
	assert.Equal(t, "#e7eaf0", dark.Legend.TitleColor)
	assert.Equal(t, "rgba(255,255,255,0.08)", dark.Axis.GridColor)
	assert.Equal(t, "rgba(255,255,255,0.14)", dark.Axis.TickColor)

	assert.Equal(t, dark, ConfigFor("unknown"))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "theme.yaml")
	s := NewFileStore(path)

	th, err := Current(s)
	require.NoError(t, err)
	assert.Equal(t, Dark, th, "missing file defaults to dark")

	require.NoError(t, s.Save("light"))
	v, ok, err := s.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)

	// A second store on the same file sees the write.
	th, err = Current(NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, Light, th)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreUnknownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: sepia\n"), 0o644))

	th, err := Current(NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, Dark, th)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unterminated"), 0o644))

	_, _, err := NewFileStore(path).Load()
	assert.Error(t, err)
}
