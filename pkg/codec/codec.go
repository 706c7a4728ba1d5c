package codec

import (
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/objectfactory-go/pkg/codec/compressor"
	"github.com/lk2023060901/objectfactory-go/pkg/codec/serializer"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

// Codec 负责“数据体 <-> 字节流”的完整编解码流程：
//
//	编码：数据体 -> Serializer -> （可选）Compressor -> 标志字节 + 负载
//	解码：标志字节 + 负载 -> （可选）Decompress -> Serializer -> 数据体
//
// 标志字节记录负载是否经过压缩，因此同一个 Codec 可以解码自己的所有输出。
type Codec interface {
	// Name 返回编解码器名称，形如 "json" 或 "proto+zstd"。
	Name() string

	// Encode 将数据体编码为字节序列。
	Encode(body map[string]any) ([]byte, error)

	// Decode 将字节序列还原为数据体。
	Decode(data []byte) (map[string]any, error)
}

// Options 描述 Codec 的组装方式。
type Options struct {
	Serializer serializer.Serializer
	// Compressor 为 nil 时不压缩。
	Compressor compressor.Compressor
}

type codec struct {
	serializer serializer.Serializer
	compressor compressor.Compressor
}

var _ Codec = (*codec)(nil)

const (
	flagPlain      byte = 0
	flagCompressed byte = 1
)

// New 按 Options 组装一个 Codec。
func New(opts Options) (Codec, error) {
	if opts.Serializer == nil {
		return nil, merr.WrapErrParameterMissing("serializer", "codec.New")
	}
	c := &codec{serializer: opts.Serializer, compressor: opts.Compressor}
	if c.compressor == nil {
		c.compressor = compressor.Nop{}
	}
	return c, nil
}

// JSON 返回基于 sonic 的 JSON 编解码器。
func JSON() Codec {
	c, _ := New(Options{Serializer: serializer.JSONSerializer{}})
	return c
}

// JSONCompat 返回基于 json-iterator 的 JSON 编解码器。
func JSONCompat() Codec {
	c, _ := New(Options{Serializer: serializer.JSONCompatSerializer{}})
	return c
}

// Proto 返回以 google.protobuf.Struct 为载体的二进制编解码器。
func Proto() Codec {
	c, _ := New(Options{Serializer: serializer.ProtoSerializer{}})
	return c
}

func (c *codec) Name() string {
	if c.compressor.Name() == compressor.NameNop {
		return c.serializer.Name()
	}
	return c.serializer.Name() + "+" + c.compressor.Name()
}

func (c *codec) Encode(body map[string]any) ([]byte, error) {
	payload, err := c.serializer.Marshal(body)
	if err != nil {
		return nil, merr.WrapErrCodecFailed(c.Name(), err, "marshal")
	}

	flag := flagPlain
	if c.compressor.Worthwhile(len(payload)) {
		if payload, err = c.compressor.Compress(payload); err != nil {
			return nil, merr.WrapErrCodecFailed(c.Name(), err, "compress")
		}
		flag = flagCompressed
	}
	return append([]byte{flag}, payload...), nil
}

func (c *codec) Decode(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, merr.WrapErrCodecFailed(c.Name(), errors.New("empty payload"), "decode")
	}
	flag, payload := data[0], data[1:]

	switch flag {
	case flagPlain:
	case flagCompressed:
		var err error
		if payload, err = c.compressor.Decompress(payload); err != nil {
			return nil, merr.WrapErrCodecFailed(c.Name(), err, "decompress")
		}
	default:
		return nil, merr.WrapErrCodecFailed(c.Name(), errors.Newf("unknown flag %d", flag), "decode")
	}

	body, err := c.serializer.Unmarshal(payload)
	if err != nil {
		return nil, merr.WrapErrCodecFailed(c.Name(), err, "unmarshal")
	}
	return body, nil
}

// ByName 按名称创建编解码器，compression 为空或 "none" 时不压缩，
// zopts 只在 compression 为 "zstd" 时生效。
func ByName(format string, compression string, zopts ...compressor.ZstdOption) (Codec, error) {
	var s serializer.Serializer
	switch format {
	case serializer.NameJSON, "":
		s = serializer.JSONSerializer{}
	case serializer.NameJSONCompat:
		s = serializer.JSONCompatSerializer{}
	case serializer.NameProto:
		s = serializer.ProtoSerializer{}
	default:
		return nil, merr.WrapErrCodecUnsupported(format)
	}

	opts := Options{Serializer: s}
	switch compression {
	case "", compressor.NameNop:
	case compressor.NameZstd:
		z, err := compressor.NewZstd(zopts...)
		if err != nil {
			return nil, merr.WrapErrCodecFailed(compressor.NameZstd, err, "init")
		}
		opts.Compressor = z
	default:
		return nil, merr.WrapErrCodecUnsupported(compression)
	}
	return New(opts)
}
