package paramtable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/viper"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, ',', c.CSV.Comma())
	assert.Equal(t, "data", c.XML.Root)
	assert.True(t, c.XML.Declaration)
	assert.Equal(t, "cbor", c.ObjGraph.Format)
	assert.EqualValues(t, 64<<20, c.ObjGraph.MaxBytes)
	assert.Equal(t, 512, c.ObjGraph.MaxDepth)
	assert.False(t, c.Convert.NonBlocking)
	assert.Zero(t, c.Convert.Expiry)

	loaded, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadYAML(t *testing.T) {
	cfg := viper.New()
	require.NoError(t, cfg.LoadBytes("yaml", []byte(`
json:
  indent: 2
csv:
  delimiter: ";"
  crlf: true
xml:
  root: items
  declaration: false
objgraph:
  format: json
  maxBytes: 1024
convert:
  workers: 3
  nonBlocking: true
  expiry: 30s
`)))

	c, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, c.JSON.Indent)
	assert.Equal(t, ';', c.CSV.Comma())
	assert.True(t, c.CSV.CRLF)
	assert.Equal(t, "items", c.XML.Root)
	assert.Equal(t, 0, c.XML.Indent)
	assert.False(t, c.XML.Declaration)
	assert.Equal(t, "json", c.ObjGraph.Format)
	assert.EqualValues(t, 1024, c.ObjGraph.MaxBytes)
	assert.Equal(t, 512, c.ObjGraph.MaxDepth)
	assert.Equal(t, 3, c.Convert.Workers)
	assert.True(t, c.Convert.NonBlocking)
	assert.Equal(t, 30*time.Second, c.Convert.Expiry)
}

func TestLoadPartial(t *testing.T) {
	cfg := viper.New()
	require.NoError(t, cfg.LoadBytes("yaml", []byte("csv:\n  crlf: true\n")))

	c, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, ",", c.CSV.Delimiter)
	assert.True(t, c.CSV.CRLF)
	assert.True(t, c.XML.Declaration)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"json indent":    func(c *Config) { c.JSON.Indent = -1 },
		"empty delim":    func(c *Config) { c.CSV.Delimiter = "" },
		"long delim":     func(c *Config) { c.CSV.Delimiter = ",;" },
		"quote delim":    func(c *Config) { c.CSV.Delimiter = `"` },
		"xml root":       func(c *Config) { c.XML.Root = "1bad" },
		"xml indent":     func(c *Config) { c.XML.Indent = -2 },
		"objgraph fmt":   func(c *Config) { c.ObjGraph.Format = "gob" },
		"objgraph bytes": func(c *Config) { c.ObjGraph.MaxBytes = 0 },
		"objgraph depth": func(c *Config) { c.ObjGraph.MaxDepth = -1 },
		"workers":        func(c *Config) { c.Convert.Workers = -1 },
		"expiry":         func(c *Config) { c.Convert.Expiry = -time.Second },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		assert.Error(t, c.Validate(), name)
	}

	c := Default()
	c.CSV.Delimiter = ""
	c.XML.Root = ""
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv.delimiter")
	assert.Contains(t, err.Error(), "xml.root")
}

func TestLoadInvalid(t *testing.T) {
	cfg := viper.New()
	require.NoError(t, cfg.LoadBytes("yaml", []byte("objgraph:\n  format: gob\n")))
	_, err := Load(cfg)
	assert.Error(t, err)
}

func TestComma(t *testing.T) {
	assert.Equal(t, '\t', CSVConfig{Delimiter: "\t"}.Comma())
	assert.Equal(t, '|', CSVConfig{Delimiter: "|"}.Comma())
	assert.Equal(t, ',', CSVConfig{Delimiter: "\n"}.Comma())
	assert.Equal(t, ',', CSVConfig{Delimiter: "ab"}.Comma())
}
