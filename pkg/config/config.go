package config

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/lk2023060901/objectfactory-go/pkg/codec"
	"github.com/lk2023060901/objectfactory-go/pkg/codec/compressor"
	"github.com/lk2023060901/objectfactory-go/pkg/codec/serializer"
	"github.com/lk2023060901/objectfactory-go/pkg/log"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
	"github.com/lk2023060901/objectfactory-go/pkg/util/viper"
)

// EnvPrefix 是覆盖配置项的环境变量前缀，例如 OBJECTFACTORY_FACTORY_TYPE_KEY。
const EnvPrefix = "OBJECTFACTORY"

// Config 是对象工厂及其周边组件的完整配置。
type Config struct {
	Factory FactoryConfig `mapstructure:"factory" json:"factory"`
	Codec   CodecConfig   `mapstructure:"codec" json:"codec"`
	Log     log.Config    `mapstructure:"log" json:"log"`
	// Loggers 为按模块命名的独立日志配置，例如 logging.factory。
	Loggers map[string]log.Config `mapstructure:"logging" json:"logging,omitempty"`
}

// FactoryConfig 配置类型注册表。
type FactoryConfig struct {
	// Name 用于日志与指标标签。
	Name string `mapstructure:"name" json:"name"`
	// TypeKey 为数据体中保存类型标签的键名。
	TypeKey string `mapstructure:"type_key" json:"type_key"`
	// BatchWorkers 为批量创建对象时的协程数，0 表示使用 GOMAXPROCS。
	BatchWorkers int `mapstructure:"batch_workers" json:"batch_workers"`
	// WarnTagCollision 表示不同类争用同一类型标签时是否输出告警日志。
	WarnTagCollision bool `mapstructure:"warn_tag_collision" json:"warn_tag_collision"`
}

// CodecConfig 配置数据体的编解码方式。
type CodecConfig struct {
	// Format 可选 json、jsoniter 或 proto。
	Format string `mapstructure:"format" json:"format"`
	// Compression 可选 none 或 zstd。
	Compression string `mapstructure:"compression" json:"compression"`
	// MinCompressSize 为启用压缩时的最小负载字节数。
	MinCompressSize int `mapstructure:"min_compress_size" json:"min_compress_size"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Factory: FactoryConfig{
			Name:             "default",
			TypeKey:          "_type",
			WarnTagCollision: true,
		},
		Codec: CodecConfig{
			Format:          serializer.NameJSON,
			Compression:     compressor.NameNop,
			MinCompressSize: 1024,
		},
		Log: log.DefaultConfig(),
	}
}

// Load 读取配置文件并应用环境变量覆盖。path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		if err := v.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return unmarshal(v)
}

// LoadReader 从 r 读取 typ（yaml/json）格式的配置并应用环境变量覆盖。
func LoadReader(r io.Reader, typ string) (*Config, error) {
	v := newViper()
	if err := v.LoadReader(r, typ); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

func newViper() *viper.Config {
	v := viper.NewWithEnv(EnvPrefix)
	def := Default()
	v.SetDefault("factory.name", def.Factory.Name)
	v.SetDefault("factory.type_key", def.Factory.TypeKey)
	v.SetDefault("factory.batch_workers", def.Factory.BatchWorkers)
	v.SetDefault("factory.warn_tag_collision", def.Factory.WarnTagCollision)
	v.SetDefault("codec.format", def.Codec.Format)
	v.SetDefault("codec.compression", def.Codec.Compression)
	v.SetDefault("codec.min_compress_size", def.Codec.MinCompressSize)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.stdout", def.Log.Stdout)
	return v
}

func unmarshal(v *viper.Config) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值。
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Factory.TypeKey) == "" {
		errs = append(errs, merr.WrapErrConfigInvalid("factory.type_key", "must not be empty"))
	}
	if c.Factory.BatchWorkers < 0 {
		errs = append(errs, merr.WrapErrConfigInvalid("factory.batch_workers", "must not be negative"))
	}
	if !lo.Contains([]string{serializer.NameJSON, serializer.NameJSONCompat, serializer.NameProto}, c.Codec.Format) {
		errs = append(errs, merr.WrapErrConfigInvalid("codec.format", "unsupported format "+c.Codec.Format))
	}
	if !lo.Contains([]string{"", compressor.NameNop, compressor.NameZstd}, c.Codec.Compression) {
		errs = append(errs, merr.WrapErrConfigInvalid("codec.compression", "unsupported compression "+c.Codec.Compression))
	}
	if c.Codec.MinCompressSize < 0 {
		errs = append(errs, merr.WrapErrConfigInvalid("codec.min_compress_size", "must not be negative"))
	}
	if !validLogFormat(c.Log.Format) {
		errs = append(errs, merr.WrapErrConfigInvalid("log.format", "unsupported format "+c.Log.Format))
	}
	for name, lc := range c.Loggers {
		if !validLogFormat(lc.Format) {
			errs = append(errs, merr.WrapErrConfigInvalid("logging."+name+".format", "unsupported format "+lc.Format))
		}
	}
	return merr.Combine(errs...)
}

func validLogFormat(format string) bool {
	return lo.Contains([]string{"", log.FormatJSON, log.FormatText, log.FormatConsole}, format)
}

// Build 按配置创建编解码器。
func (c CodecConfig) Build() (codec.Codec, error) {
	return codec.ByName(c.Format, c.Compression, compressor.WithMinSize(c.MinCompressSize))
}
