package application

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-serde-go/pkg/codec"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/objgraph"
	"github.com/lk2023060901/danmu-serde-go/pkg/convert"
	zlog "github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/paramtable"
	zviper "github.com/lk2023060901/danmu-serde-go/pkg/util/viper"
)

const (
	defaultConfigPath = "./serde.yaml"
	envConfigPath     = "SERDE_CONFIG_FILE_PATH"
)

// Application is the runtime container for serde tools.
// It owns configuration, loggers, the metrics registry and the configured codecs.
type Application struct {
	fs       afero.Fs
	args     []string
	cfg      *zviper.Config
	params   *paramtable.Config
	loggers  map[string]*zlog.MLogger
	registry *prometheus.Registry
	codecs   map[codec.Format]codec.ValueCodec
	conv     *convert.Converter
}

// Option configures an Application.
type Option func(*Application)

// WithFs sets the filesystem used for configuration and codec files.
func WithFs(fs afero.Fs) Option {
	return func(a *Application) {
		a.fs = fs
	}
}

// WithArgs overrides the command-line arguments, os.Args[1:] by default.
func WithArgs(args []string) Option {
	return func(a *Application) {
		a.args = args
	}
}

// New creates a new Application instance.
func New(opts ...Option) *Application {
	a := &Application{}
	for _, opt := range opts {
		opt(a)
	}
	if a.args == nil {
		a.args = os.Args[1:]
	}
	return a
}

// Run bootstraps the application.
// It loads the configuration file using the following priority:
//  1. Default: ./serde.yaml (may be absent)
//  2. Env: SERDE_CONFIG_FILE_PATH
//  3. CLI: --config <path> or --config=<path>
func (a *Application) Run() error {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		zlog.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		zlog.Warn("failed to set GOMAXPROCS", zlog.FieldError(err))
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}

	params, err := paramtable.Load(cfg)
	if err != nil {
		return errors.Wrap(err, "load codec params")
	}
	a.params = params

	a.registry = prometheus.NewRegistry()
	metrics.Register(a.registry)

	return a.initCodecs()
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Params returns the codec parameters.
func (a *Application) Params() *paramtable.Config {
	return a.params
}

// Registry returns the private prometheus registry holding serde metrics.
func (a *Application) Registry() *prometheus.Registry {
	return a.registry
}

// Codec returns the configured value codec for format.
func (a *Application) Codec(format codec.Format) (codec.ValueCodec, error) {
	c, ok := a.codecs[format]
	if !ok {
		return nil, errors.Wrapf(codec.ErrUnknownFormat, "format=%q", string(format))
	}
	return c, nil
}

// ObjGraph returns an object-graph codec configured from params.
// A nil reg means objgraph.DefaultRegistry.
func (a *Application) ObjGraph(reg *objgraph.Registry) (*objgraph.Codec, error) {
	c, err := codec.OpenObjGraph(reg, a.params, a.fs)
	if err != nil {
		return nil, err
	}
	c.SetLogger(a.Logger(objgraph.Name))
	return c, nil
}

// Converter returns the configured converter.
func (a *Application) Converter() *convert.Converter {
	return a.conv
}

// Close releases resources held by the application.
func (a *Application) Close() {
	if a.conv != nil {
		a.conv.Close()
	}
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return &zlog.MLogger{Logger: zlog.L()}
}

// loadConfig resolves config file path and loads it via viper wrapper.
func (a *Application) loadConfig() (*zviper.Config, error) {
	configPath := defaultConfigPath
	explicit := false

	if envPath := os.Getenv(envConfigPath); envPath != "" {
		configPath = envPath
		explicit = true
	}

	for i := 0; i < len(a.args); i++ {
		arg := a.args[i]
		if arg == "--config" {
			if i+1 >= len(a.args) {
				return nil, errors.New("missing value after --config")
			}
			configPath = a.args[i+1]
			explicit = true
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			if val := strings.TrimPrefix(arg, "--config="); val != "" {
				configPath = val
				explicit = true
			}
			continue
		}
	}

	cfg := zviper.New()
	if a.fs != nil {
		cfg = zviper.NewWithFs(a.fs)
	}
	if !explicit && !a.exists(configPath) {
		// No file at the default location, defaults apply.
		return cfg, nil
	}
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", configPath)
	}
	return cfg, nil
}

func (a *Application) exists(path string) bool {
	var err error
	if a.fs != nil {
		_, err = a.fs.Stat(path)
	} else {
		_, err = os.Stat(path)
	}
	return !errors.Is(err, fs.ErrNotExist)
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	return a.initModuleLoggersFromConfig()
}

// initGlobalLoggerFromEnv configures the process-wide logger based on SERDE_LOG_* env vars.
//
//   - SERDE_LOG_ENABLE: "1"/"true" to enable outputs; others treated as disabled.
//   - SERDE_LOG_LEVEL: log level (default "info").
//   - SERDE_LOG_STDOUT: whether to log to stdout (default false).
//   - SERDE_LOG_FILE_DIR: log directory.
//   - SERDE_LOG_FILE: log file name (empty means no file).
//   - SERDE_LOG_FORMAT: log format ("text" or "json", default "text").
func (a *Application) initGlobalLoggerFromEnv() error {
	enabled := getenvBool("SERDE_LOG_ENABLE", false)

	cfg := &zlog.Config{
		Level:               getenvDefault("SERDE_LOG_LEVEL", "info"),
		Format:              getenvDefault("SERDE_LOG_FORMAT", "text"),
		Stdout:              getenvBool("SERDE_LOG_STDOUT", false),
		DisableErrorVerbose: true,
		File: zlog.FileLogConfig{
			RootPath: getenvDefault("SERDE_LOG_FILE_DIR", ""),
			Filename: getenvDefault("SERDE_LOG_FILE", ""),
		},
	}

	// When not enabled, direct all outputs to a discarded sink.
	if !enabled {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger from env")
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from the "logging" key.
// A logger named after a codec format (json, csv, xml, objgraph) is bound to that codec.
//
// Example:
//
//	logging:
//	  csv:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: csv.log
func (a *Application) initModuleLoggersFromConfig() error {
	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zap.String("module", name))}
	}
	return nil
}

// initCodecs opens every value codec and the converter from params.
func (a *Application) initCodecs() error {
	a.codecs = make(map[codec.Format]codec.ValueCodec, len(codec.Formats()))
	for _, f := range codec.Formats() {
		c, err := codec.Open(f, a.params, a.fs)
		if err != nil {
			return err
		}
		if lg, ok := a.loggers[string(f)]; ok {
			c.SetLogger(lg)
		}
		a.codecs[f] = c
	}

	conv, err := convert.New(a.params, a.fs)
	if err != nil {
		return err
	}
	if lg, ok := a.loggers["convert"]; ok {
		conv.SetLogger(lg)
	}
	a.conv = conv
	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
