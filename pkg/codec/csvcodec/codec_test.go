package csvcodec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

type CodecSuite struct {
	suite.Suite
	dir   string
	codec *Codec
	logs  *observer.ObservedLogs
}

func (s *CodecSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.codec = New()
	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs
	s.codec.SetLogger(&log.MLogger{Logger: zap.New(core)})
}

func (s *CodecSuite) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *CodecSuite) read(p string) string {
	data, err := os.ReadFile(p)
	s.Require().NoError(err)
	return string(data)
}

func (s *CodecSuite) write(name, text string) string {
	p := s.path(name)
	s.Require().NoError(os.WriteFile(p, []byte(text), 0o644))
	return p
}

func rec(entries ...value.Entry) *value.Map {
	return value.NewMapFrom(entries...)
}

func (s *CodecSuite) TestLossyRoundTrip() {
	p := s.path("people.csv")
	s.Require().NoError(s.codec.EncodeRecords([]*value.Map{
		rec(value.E("id", value.Int(1)), value.E("name", value.Str("Alice"))),
	}, p))

	got, err := s.codec.DecodeRecords(p)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	want := rec(value.E("id", value.Str("1")), value.E("name", value.Str("Alice")))
	s.True(value.Equal(value.MapOf(want), value.MapOf(got[0])), "got %s", got[0])
}

func (s *CodecSuite) TestHeaderFromFirstRecord() {
	p := s.path("header.csv")
	s.Require().NoError(s.codec.EncodeRecords([]*value.Map{
		rec(value.E("a", value.Int(1)), value.E("b", value.Int(2))),
		rec(value.E("a", value.Int(3)), value.E("c", value.Int(4))),
	}, p))
	s.Equal("a,b\n1,2\n3,\n", s.read(p))

	got, err := s.codec.DecodeRecords(p)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal([]string{"a", "b"}, got[1].Keys())
	b, _ := got[1].Get("b")
	s.True(value.Equal(value.Str(""), b))

	dropped := s.logs.FilterMessage("csv keys absent from header are dropped").All()
	s.Require().Len(dropped, 1)
	s.Equal([]any{"c"}, dropped[0].ContextMap()["keys"])
}

func (s *CodecSuite) TestScalarText() {
	p := s.path("scalars.csv")
	s.Require().NoError(s.codec.EncodeRecords([]*value.Map{
		rec(
			value.E("n", value.Null()),
			value.E("t", value.Bool(true)),
			value.E("f", value.Bool(false)),
			value.E("i", value.Int(-7)),
			value.E("x", value.Float(2)),
			value.E("s", value.Str("a,b \"q\"")),
		),
	}, p))
	s.Equal("n,t,f,i,x,s\n,True,False,-7,2.0,\"a,b \"\"q\"\"\"\n", s.read(p))
}

func (s *CodecSuite) TestNestedRejected() {
	p := s.path("nested.csv")
	err := s.codec.EncodeRecords([]*value.Map{
		rec(value.E("a", value.List(value.Int(1)))),
	}, p)
	s.True(errors.Is(err, merr.ErrUnsupportedShape))
	_, statErr := os.Stat(p)
	s.True(os.IsNotExist(statErr))
}

func (s *CodecSuite) TestEmptyRecordSet() {
	p := s.path("empty.csv")
	s.Require().NoError(s.codec.EncodeRecords(nil, p))
	s.Equal("", s.read(p))

	got, err := s.codec.DecodeRecords(p)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *CodecSuite) TestHeaderOnly() {
	got, err := s.codec.DecodeRecords(s.write("h.csv", "a,b\n"))
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *CodecSuite) TestNotFound() {
	_, err := s.codec.DecodeRecords(s.path("missing.csv"))
	s.True(errors.Is(err, merr.ErrNotFound))
}

func (s *CodecSuite) TestLineEndingsAndBlankLines() {
	got, err := s.codec.DecodeRecords(s.write("crlf.csv", "a,b\r\n1,2\r\n\r\n3,4\n"))
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	v, _ := got[1].Get("b")
	s.True(value.Equal(value.Str("4"), v))
}

func (s *CodecSuite) TestShortAndLongRows() {
	got, err := s.codec.DecodeRecords(s.write("short.csv", "a,b,c\n1\n"))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	c, ok := got[0].Get("c")
	s.True(ok)
	s.True(value.Equal(value.Str(""), c))

	_, err = s.codec.DecodeRecords(s.write("long.csv", "a\n1,2\n"))
	s.True(errors.Is(err, merr.ErrParseFailure))
}

func (s *CodecSuite) TestDuplicateHeaderLastWins() {
	got, err := s.codec.DecodeRecords(s.write("dup.csv", "a,b,a\n1,2,3\n"))
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, got[0].Keys())
	a, _ := got[0].Get("a")
	s.True(value.Equal(value.Str("3"), a))
}

func (s *CodecSuite) TestMalformedQuotes() {
	_, err := s.codec.DecodeRecords(s.write("bad.csv", "a\n\"x\"y\n"))
	s.True(errors.Is(err, merr.ErrParseFailure))
}

func (s *CodecSuite) TestDelimiterAndCRLF() {
	c := New(WithDelimiter(';'), WithCRLF(true))
	p := s.path("semi.csv")
	s.Require().NoError(c.EncodeRecords([]*value.Map{rec(value.E("a", value.Int(1)), value.E("b", value.Str("x;y")))}, p))
	s.Equal("a;b\r\n1;\"x;y\"\r\n", s.read(p))

	got, err := c.DecodeRecords(p)
	s.Require().NoError(err)
	b, _ := got[0].Get("b")
	s.True(value.Equal(value.Str("x;y"), b))

	s.Equal(',', New(WithDelimiter('"')).comma)
}

func (s *CodecSuite) TestSingleColumnEmptyCells() {
	p := s.path("note.csv")
	s.Require().NoError(s.codec.EncodeRecords([]*value.Map{
		rec(value.E("note", value.Str("x"))),
		rec(value.E("note", value.Null())),
		rec(value.E("note", value.Str("y"))),
	}, p))
	s.Equal("note\nx\n\"\"\ny\n", s.read(p))

	got, err := s.codec.DecodeRecords(p)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	mid, ok := got[1].Get("note")
	s.True(ok)
	s.True(value.Equal(value.Str(""), mid))

	c := New(WithCRLF(true))
	p = s.path("blank-key.csv")
	s.Require().NoError(c.EncodeRecords([]*value.Map{rec(value.E("", value.Str("")))}, p))
	s.Equal("\"\"\r\n\"\"\r\n", s.read(p))
	got, err = c.DecodeRecords(p)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal([]string{""}, got[0].Keys())
}

func (s *CodecSuite) TestValueForm() {
	p := s.path("value.csv")
	in := value.List(value.MapFrom(value.E("k", value.Str("v"))))
	s.Require().NoError(s.codec.Encode(in, p))
	got, err := s.codec.Decode(p)
	s.Require().NoError(err)
	s.True(value.Equal(in, got))

	err = s.codec.Encode(value.MapFrom(), p)
	s.True(errors.Is(err, merr.ErrUnsupportedShape))
	err = s.codec.Encode(value.List(value.Int(1)), p)
	s.True(errors.Is(err, merr.ErrUnsupportedShape))
}

func (s *CodecSuite) TestPackageLevel() {
	p := s.path("pkg.csv")
	s.Require().NoError(Encode([]*value.Map{rec(value.E("x", value.Float(0.5)))}, p))
	got, err := Decode(p)
	s.Require().NoError(err)
	x, _ := got[0].Get("x")
	s.True(value.Equal(value.Str("0.5"), x))
}

func TestCodec(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}
