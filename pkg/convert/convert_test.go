package convert

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/danmu-serde-go/pkg/codec"
	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/paramtable"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

type ConvertSuite struct {
	suite.Suite
	dir string
	c   *Converter
}

func (s *ConvertSuite) SetupTest() {
	s.dir = s.T().TempDir()
	cfg := paramtable.Default()
	cfg.Convert.Workers = 2
	c, err := New(cfg, nil)
	s.Require().NoError(err)
	s.c = c
}

func (s *ConvertSuite) TearDownTest() {
	s.c.Close()
}

func (s *ConvertSuite) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *ConvertSuite) write(name, content string) string {
	p := s.path(name)
	s.Require().NoError(os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (s *ConvertSuite) read(p string) string {
	data, err := os.ReadFile(p)
	s.Require().NoError(err)
	return string(data)
}

func (s *ConvertSuite) notExist(p string) {
	_, err := os.Stat(p)
	s.True(os.IsNotExist(err), "%s should not exist", p)
}

func (s *ConvertSuite) TestCSVToJSON() {
	src := s.write("in.csv", "name,age\nalice,30\nbob,\n")
	dst := s.path("out.json")
	s.Require().NoError(s.c.CSVToJSON(src, dst))
	s.Equal(`[{"name":"alice","age":"30"},{"name":"bob","age":""}]`, s.read(dst))
}

func (s *ConvertSuite) TestCSVToJSONEmpty() {
	src := s.write("empty.csv", "")
	dst := s.path("empty.json")
	s.Require().NoError(s.c.CSVToJSON(src, dst))
	s.Equal(`[]`, s.read(dst))
}

func (s *ConvertSuite) TestJSONToXML() {
	src := s.write("in.json", `{"a": 1, "b": "x", "c": true, "d": null}`)
	dst := s.path("out.xml")
	s.Require().NoError(s.c.Convert(codec.FormatJSON, src, codec.FormatXML, dst))
	s.Equal("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<data><a>1</a><b>x</b><c>True</c><d></d></data>\n", s.read(dst))
}

func (s *ConvertSuite) TestFailuresLeaveNoOutput() {
	dst := s.path("out.xml")
	err := s.c.Convert(codec.FormatJSON, s.path("missing.json"), codec.FormatXML, dst)
	s.True(errors.Is(err, merr.ErrNotFound))
	s.notExist(dst)

	src := s.write("list.json", `[1, 2]`)
	err = s.c.Convert(codec.FormatJSON, src, codec.FormatXML, dst)
	s.True(errors.Is(err, merr.ErrUnsupportedShape))
	s.notExist(dst)

	bad := s.write("bad.json", `{"a":`)
	err = s.c.Convert(codec.FormatJSON, bad, codec.FormatCSV, s.path("out.csv"))
	s.True(errors.Is(err, merr.ErrParseFailure))
	s.notExist(s.path("out.csv"))

	err = s.c.Convert("yaml", src, codec.FormatJSON, s.path("out.json"))
	s.True(errors.Is(err, codec.ErrUnknownFormat))
}

func (s *ConvertSuite) TestTaskOf() {
	t, err := TaskOf("/a/in.csv", "/b/out.json")
	s.Require().NoError(err)
	s.Equal(Task{SrcFormat: codec.FormatCSV, Src: "/a/in.csv", DstFormat: codec.FormatJSON, Dst: "/b/out.json"}, t)

	_, err = TaskOf("/a/in.txt", "/b/out.json")
	s.True(errors.Is(err, codec.ErrUnknownFormat))
	_, err = TaskOf("/a/in.csv", "/b/out")
	s.True(errors.Is(err, codec.ErrUnknownFormat))
}

func (s *ConvertSuite) TestBatch() {
	var tasks []Task
	for _, name := range []string{"a", "b", "c"} {
		src := s.write(name+".csv", "k\n"+name+"\n")
		tasks = append(tasks, Task{SrcFormat: codec.FormatCSV, Src: src, DstFormat: codec.FormatJSON, Dst: s.path(name + ".json")})
	}
	tasks = append(tasks,
		Task{SrcFormat: codec.FormatCSV, Src: s.path("missing.csv"), DstFormat: codec.FormatJSON, Dst: s.path("missing.json")},
		Task{SrcFormat: codec.FormatJSON, Src: s.write("list.json", `[1]`), DstFormat: codec.FormatXML, Dst: s.path("list.xml")},
	)

	err := s.c.Batch(tasks...)
	s.Require().Error(err)
	s.True(errors.Is(err, merr.ErrNotFound))
	s.True(errors.Is(err, merr.ErrUnsupportedShape))
	s.Contains(err.Error(), "missing.csv")

	for _, name := range []string{"a", "b", "c"} {
		s.Equal(`[{"k":"`+name+`"}]`, s.read(s.path(name+".json")))
	}
	s.notExist(s.path("missing.json"))
	s.notExist(s.path("list.xml"))
	s.Equal(float64(0), testutil.ToFloat64(metrics.ConvertPendingTasks))

	s.NoError(s.c.Batch())
	s.NoError(s.c.Batch(tasks[0]))
}

func (s *ConvertSuite) TestBatchAfterClose() {
	s.c.Close()
	err := s.c.Batch(Task{})
	s.True(errors.Is(err, ErrClosed))
}

func (s *ConvertSuite) TestCloseAfterBatch() {
	src := s.write("a.csv", "x\n1\n")
	s.Require().NoError(s.c.Batch(Task{SrcFormat: codec.FormatCSV, Src: src, DstFormat: codec.FormatJSON, Dst: s.path("a.json")}))

	s.c.Close()
	err := s.c.Batch(Task{SrcFormat: codec.FormatCSV, Src: src, DstFormat: codec.FormatJSON, Dst: s.path("b.json")})
	s.True(errors.Is(err, ErrClosed), "%v", err)
	s.notExist(s.path("b.json"))
	s.NotPanics(s.c.Close)
}

// panicCodec 在解码时 panic。
type panicCodec struct {
	log.Binder
}

func (*panicCodec) Name() string { return "panic" }
func (*panicCodec) Encode(value.Value, string) error { return nil }
func (*panicCodec) Decode(string) (value.Value, error) {
	panic("decoder exploded")
}

func (s *ConvertSuite) TestBatchPanicIsTaskError() {
	s.c.codecs["panic"] = &panicCodec{}
	src := s.write("ok.csv", "x\n1\n")

	err := s.c.Batch(
		Task{SrcFormat: "panic", Src: "any", DstFormat: codec.FormatJSON, Dst: s.path("never.json")},
		Task{SrcFormat: codec.FormatCSV, Src: src, DstFormat: codec.FormatJSON, Dst: s.path("ok.json")},
	)
	s.Require().Error(err)
	s.Contains(err.Error(), "decoder exploded")
	s.notExist(s.path("never.json"))
	s.Equal(`[{"x":"1"}]`, s.read(s.path("ok.json")))
	s.Equal(0.0, testutil.ToFloat64(metrics.ConvertPendingTasks))
}

func (s *ConvertSuite) TestPoolParams() {
	cfg := paramtable.Default()
	cfg.Convert.Workers = 1
	cfg.Convert.NonBlocking = true
	cfg.Convert.Expiry = time.Second
	c, err := New(cfg, nil)
	s.Require().NoError(err)
	defer c.Close()
	s.Len(c.poolOpts, 3)

	src := s.write("nb.csv", "x\n1\n")
	s.Require().NoError(c.Batch(Task{SrcFormat: codec.FormatCSV, Src: src, DstFormat: codec.FormatJSON, Dst: s.path("nb.json")}))
	s.Equal(`[{"x":"1"}]`, s.read(s.path("nb.json")))
}

func (s *ConvertSuite) TestPackageLevel() {
	src := s.write("pkg.csv", "x\n1\n")
	dst := s.path("pkg.json")
	s.Require().NoError(CSVToJSON(src, dst))
	s.Equal(`[{"x":"1"}]`, s.read(dst))

	s.Require().NoError(Convert(codec.FormatJSON, dst, codec.FormatCSV, s.path("pkg2.csv")))
	s.Equal("x\n1\n", s.read(s.path("pkg2.csv")))

	s.Require().NoError(Batch(Task{SrcFormat: codec.FormatCSV, Src: src, DstFormat: codec.FormatJSON, Dst: s.path("pkg3.json")}))
	s.Equal(`[{"x":"1"}]`, s.read(s.path("pkg3.json")))
}

func TestConvert(t *testing.T) {
	suite.Run(t, new(ConvertSuite))
}
