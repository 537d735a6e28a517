package viper

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type section struct {
	Name  string `mapstructure:"name"`
	Count int    `mapstructure:"count"`
}

func TestLoadFileFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/app.yaml", []byte("sec:\n  name: a\n"), 0o644))

	c := NewWithFs(fs)
	c.SetDefault("sec.count", 7)
	require.NoError(t, c.LoadFile("/etc/app.yaml"))

	var s section
	require.NoError(t, c.UnmarshalKey("sec", &s))
	assert.Equal(t, section{Name: "a", Count: 7}, s)
	assert.True(t, c.IsSet("sec.name"))
	assert.False(t, c.IsSet("other"))
}

func TestLoadFileMissing(t *testing.T) {
	c := NewWithFs(afero.NewMemMapFs())
	assert.Error(t, c.LoadFile("/nope.yaml"))
}

func TestLoadBytesJSON(t *testing.T) {
	c := New()
	require.NoError(t, c.LoadBytes("json", []byte(`{"sec":{"name":"j","count":2}}`)))

	var all struct {
		Sec section `mapstructure:"sec"`
	}
	require.NoError(t, c.Unmarshal(&all))
	assert.Equal(t, section{Name: "j", Count: 2}, all.Sec)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "yaml", typeOf("a.YML"))
	assert.Equal(t, "json", typeOf("a.json"))
	assert.Equal(t, "", typeOf("a.toml"))
}
