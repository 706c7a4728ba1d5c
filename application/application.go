package application

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lk2023060901/objectfactory-go/pkg/codec"
	"github.com/lk2023060901/objectfactory-go/pkg/config"
	zlog "github.com/lk2023060901/objectfactory-go/pkg/log"
	"github.com/lk2023060901/objectfactory-go/pkg/metrics"
	"github.com/lk2023060901/objectfactory-go/pkg/objectfactory"
)

// ConfigPathEnv 指定配置文件路径的环境变量。
const ConfigPathEnv = "OBJECTFACTORY_CONFIG_FILE_PATH"

// FactoryLoggerName 是 Factory 使用的模块日志名，对应配置中的 logging.factory。
const FactoryLoggerName = "factory"

// Application 负责加载配置、初始化日志与指标，并构建 Factory 与 Codec。
type Application struct {
	classes    []*objectfactory.Class
	registerer prometheus.Registerer

	cfg     *config.Config
	factory *objectfactory.Factory
	codec   codec.Codec
	loggers map[string]*zlog.MLogger
}

// Option 用于配置 Application。
type Option func(*Application)

// WithClasses 追加启动时注册到 Factory 的类。
func WithClasses(classes ...*objectfactory.Class) Option {
	return func(a *Application) {
		a.classes = append(a.classes, classes...)
	}
}

// WithRegisterer 指定指标注册器，默认使用 prometheus.DefaultRegisterer。
func WithRegisterer(r prometheus.Registerer) Option {
	return func(a *Application) {
		a.registerer = r
	}
}

// New creates a new Application instance.
func New(opts ...Option) *Application {
	a := &Application{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run 使用 os.Args 启动。
func (a *Application) Run() error {
	return a.Start(os.Args[1:])
}

// Start 解析命令行参数并完成初始化。配置文件路径的优先级：
//  1. CLI: --config <path> 或 --config=<path>
//  2. Env: OBJECTFACTORY_CONFIG_FILE_PATH
//  3. 均未指定时只使用默认值与 OBJECTFACTORY_* 环境变量
//
// 初始化完成后 Factory 会替换为包级默认 Factory。
func (a *Application) Start(args []string) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return errors.Wrapf(err, "failed to load config file %q", path)
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}
	metrics.Register(a.registerer)

	a.codec, err = cfg.Codec.Build()
	if err != nil {
		return errors.Wrap(err, "build codec")
	}

	a.factory = objectfactory.NewFactory(
		objectfactory.WithConfig(cfg.Factory),
		objectfactory.WithLogger(a.Logger(FactoryLoggerName)),
	)
	for _, cls := range a.classes {
		a.factory.Register(cls)
	}
	objectfactory.SetDefault(a.factory)

	zlog.Info("application started",
		zap.String("factory", a.factory.Name()),
		zap.String("codec", a.codec.Name()),
		zap.Int("tags", a.factory.Len()))
	return nil
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *config.Config {
	return a.cfg
}

func (a *Application) Factory() *objectfactory.Factory {
	return a.factory
}

func (a *Application) Codec() codec.Codec {
	return a.codec
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return &zlog.MLogger{Logger: zlog.L()}
}

// Close 刷新日志缓冲。
func (a *Application) Close() error {
	return zlog.Sync()
}

func configPath(args []string) (string, error) {
	path := strings.TrimSpace(os.Getenv(ConfigPathEnv))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return "", errors.New("missing value after --config")
			}
			path = args[i+1]
			i++
			continue
		}
		if val, ok := strings.CutPrefix(arg, "--config="); ok && val != "" {
			path = val
		}
	}
	return path, nil
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := zlog.Setup(&a.cfg.Log); err != nil {
		return errors.Wrap(err, "init global logger")
	}
	if len(a.cfg.Loggers) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(a.cfg.Loggers))
	for name, lc := range a.cfg.Loggers {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}
	return nil
}
