package viper

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	spfviper "github.com/spf13/viper"
)

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
type Config struct {
	v *spfviper.Viper
}

// NewWithEnv 创建一个同时读取环境变量的 Config。
// 键 "factory.type_key" 对应环境变量 "<PREFIX>_FACTORY_TYPE_KEY"。
func NewWithEnv(prefix string) *Config {
	v := spfviper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// SetDefault 设置 key 的默认值。
// 只有设置过默认值（或出现在配置文件中）的 key 才会在 Unmarshal 时读取环境变量。
func (c *Config) SetDefault(key string, value any) {
	c.v.SetDefault(key, value)
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中。
// 文件类型通过扩展名（.yaml/.yml/.json）推断。
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)

	if typ := configType(path); typ != "" {
		c.v.SetConfigType(typ)
	}

	if err := c.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	return nil
}

// LoadReader 从 r 读取 typ（yaml/json）格式的配置。
func (c *Config) LoadReader(r io.Reader, typ string) error {
	c.v.SetConfigType(typ)
	if err := c.v.ReadConfig(r); err != nil {
		return errors.Wrapf(err, "read %s config", typ)
	}
	return nil
}

// Unmarshal 将完整配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) Unmarshal(dst any) error {
	return c.v.Unmarshal(dst)
}

func configType(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
