package codec

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-serde-go/internal/serializer"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/objgraph"
	"github.com/lk2023060901/danmu-serde-go/pkg/paramtable"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "CSV", " xml "} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("yaml")
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	f, err := FormatOfPath("/tmp/a.b/records.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = FormatOfPath("/tmp/noext")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.Len(t, Formats(), 3)
}

func TestOpenRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	rows := value.List(
		value.MapFrom(value.E("name", value.Str("a")), value.E("n", value.Str("1"))),
		value.MapFrom(value.E("name", value.Str("b")), value.E("n", value.Str("2"))),
	)
	flat := value.MapFrom(value.E("name", value.Str("a")), value.E("n", value.Int(1)))

	cases := map[Format]value.Value{
		FormatJSON: value.MapFrom(value.E("rows", rows), value.E("ok", value.Bool(true))),
		FormatCSV:  rows,
		FormatXML:  flat,
	}
	for format, v := range cases {
		c, err := Open(format, nil, fs)
		require.NoError(t, err)
		assert.Equal(t, string(format), c.Name())

		path := "/out." + string(format)
		require.NoError(t, c.Encode(v, path))
		got, err := c.Decode(path)
		require.NoError(t, err)
		assert.True(t, v.Equal(got), "%s: %v", format, got)
	}

	_, err := Open("yaml", nil, fs)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestOpenHonorsConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := paramtable.Default()
	cfg.CSV.Delimiter = ";"
	cfg.XML.Root = "items"
	cfg.XML.Declaration = false
	cfg.JSON.Indent = 2

	csv, err := Open(FormatCSV, cfg, fs)
	require.NoError(t, err)
	require.NoError(t, csv.Encode(value.List(value.MapFrom(value.E("a", value.Int(1)), value.E("b", value.Int(2)))), "/a.csv"))
	data, err := afero.ReadFile(fs, "/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;2\n", string(data))

	xml, err := Open(FormatXML, cfg, fs)
	require.NoError(t, err)
	require.NoError(t, xml.Encode(value.MapFrom(value.E("k", value.Str("v"))), "/a.xml"))
	data, err = afero.ReadFile(fs, "/a.xml")
	require.NoError(t, err)
	assert.Equal(t, "<items><k>v</k></items>\n", string(data))

	json, err := Open(FormatJSON, cfg, fs)
	require.NoError(t, err)
	require.NoError(t, json.Encode(value.MapFrom(value.E("k", value.Int(1))), "/a.json"))
	data, err = afero.ReadFile(fs, "/a.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": 1\n}\n", string(data))
}

type point struct {
	X, Y int
}

func TestOpenObjGraph(t *testing.T) {
	fs := afero.NewMemMapFs()
	reg := objgraph.NewRegistry()
	reg.MustRegister("point", point{})

	cfg := paramtable.Default()
	cfg.ObjGraph.Format = "json"
	c, err := OpenObjGraph(reg, cfg, fs)
	require.NoError(t, err)
	require.NoError(t, c.Serialize(&point{X: 1, Y: 2}, "/p.bin"))

	data, err := afero.ReadFile(fs, "/p.bin")
	require.NoError(t, err)
	assert.Equal(t, byte(serializer.FormatJSON), data[6])

	got, err := objgraph.DeserializeAs[*point](c, "/p.bin")
	require.NoError(t, err)
	assert.Equal(t, &point{X: 1, Y: 2}, got)

	cfg.ObjGraph.Format = "gob"
	_, err = OpenObjGraph(reg, cfg, fs)
	assert.Error(t, err)
}
