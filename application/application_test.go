package application

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-serde-go/pkg/codec"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/objgraph"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

const sampleConfig = `
csv:
  delimiter: ";"
xml:
  root: items
  declaration: false
objgraph:
  format: json
convert:
  workers: 2
logging:
  csv:
    level: debug
`

func newFs(t *testing.T, path, content string) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	return fs
}

func TestRunWithConfigFlag(t *testing.T) {
	fs := newFs(t, "/etc/serde.yaml", sampleConfig)
	app := New(WithFs(fs), WithArgs([]string{"--config", "/etc/serde.yaml"}))
	require.NoError(t, app.Run())
	defer app.Close()

	assert.Equal(t, ";", app.Params().CSV.Delimiter)
	assert.Equal(t, "items", app.Params().XML.Root)
	assert.Equal(t, 2, app.Params().Convert.Workers)
	assert.True(t, app.Config().IsSet("logging.csv.level"))

	c, err := app.Codec(codec.FormatCSV)
	require.NoError(t, err)
	assert.Same(t, app.Logger("csv"), c.Logger())
	require.NoError(t, c.Encode(value.List(value.MapFrom(value.E("a", value.Int(1)), value.E("b", value.Int(2)))), "/out.csv"))
	data, err := afero.ReadFile(fs, "/out.csv")
	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;2\n", string(data))

	x, err := app.Codec(codec.FormatXML)
	require.NoError(t, err)
	require.NoError(t, x.Encode(value.MapFrom(value.E("k", value.Bool(true))), "/out.xml"))
	data, err = afero.ReadFile(fs, "/out.xml")
	require.NoError(t, err)
	assert.Equal(t, "<items><k>True</k></items>\n", string(data))

	_, err = app.Codec("yaml")
	assert.ErrorIs(t, err, codec.ErrUnknownFormat)

	require.NoError(t, app.Converter().Convert(codec.FormatCSV, "/out.csv", codec.FormatJSON, "/out.json"))
	data, err = afero.ReadFile(fs, "/out.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"a":"1","b":"2"}]`, string(data))

	count, err := testutil.GatherAndCount(app.Registry(), "serde_codec_operations_total")
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

type sample struct {
	Name string
}

func TestObjGraph(t *testing.T) {
	fs := newFs(t, "/serde.yaml", sampleConfig)
	app := New(WithFs(fs), WithArgs([]string{"--config=/serde.yaml"}))
	require.NoError(t, app.Run())
	defer app.Close()

	reg := objgraph.NewRegistry()
	reg.MustRegister("sample", sample{})
	c, err := app.ObjGraph(reg)
	require.NoError(t, err)
	require.NoError(t, c.Serialize(&sample{Name: "s"}, "/s.bin"))

	data, err := afero.ReadFile(fs, "/s.bin")
	require.NoError(t, err)
	assert.Equal(t, byte(2), data[6], "payload format follows objgraph.format")

	got, err := objgraph.DeserializeAs[*sample](c, "/s.bin")
	require.NoError(t, err)
	assert.Equal(t, "s", got.Name)
}

func TestRunDefaultsWithoutFile(t *testing.T) {
	app := New(WithFs(afero.NewMemMapFs()), WithArgs([]string{}))
	require.NoError(t, app.Run())
	defer app.Close()

	assert.Equal(t, ",", app.Params().CSV.Delimiter)
	assert.Equal(t, "data", app.Params().XML.Root)
	assert.NotNil(t, app.Logger("unknown"))
}

func TestRunEnvConfig(t *testing.T) {
	fs := newFs(t, "/env.yaml", "json:\n  indent: 4\n")
	t.Setenv(envConfigPath, "/env.yaml")
	app := New(WithFs(fs), WithArgs([]string{}))
	require.NoError(t, app.Run())
	defer app.Close()
	assert.Equal(t, 4, app.Params().JSON.Indent)
}

func TestRunErrors(t *testing.T) {
	fs := newFs(t, "/bad.yaml", "csv:\n  delimiter: \"\\n\"\n")
	fs2 := newFs(t, "/badlog.yaml", "logging:\n  x:\n    level: nope\n")

	cases := map[string]*Application{
		"missing explicit file": New(WithFs(afero.NewMemMapFs()), WithArgs([]string{"--config", "/nope.yaml"})),
		"missing flag value":    New(WithFs(afero.NewMemMapFs()), WithArgs([]string{"--config"})),
		"invalid params":        New(WithFs(fs), WithArgs([]string{"--config", "/bad.yaml"})),
		"invalid logger level":  New(WithFs(fs2), WithArgs([]string{"--config", "/badlog.yaml"})),
	}
	for name, app := range cases {
		assert.Error(t, app.Run(), name)
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("SERDE_TEST_BOOL", "on")
	t.Setenv("SERDE_TEST_STR", "  v ")
	assert.True(t, getenvBool("SERDE_TEST_BOOL", false))
	assert.True(t, getenvBool("SERDE_TEST_UNSET", true))
	assert.Equal(t, "v", getenvDefault("SERDE_TEST_STR", "d"))
	assert.Equal(t, "d", getenvDefault("SERDE_TEST_UNSET", "d"))
}
