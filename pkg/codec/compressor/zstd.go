package compressor

import (
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

// Zstd 使用 klauspost/compress 的 EncodeAll/DecodeAll，可并发使用。
type Zstd struct {
	minSize int
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

var _ Compressor = (*Zstd)(nil)

type zstdOptions struct {
	minSize int
	level   zstd.EncoderLevel
}

type ZstdOption func(*zstdOptions)

// WithMinSize 负载小于 n 字节时不压缩，0 表示总是压缩。
func WithMinSize(n int) ZstdOption {
	return func(o *zstdOptions) { o.minSize = n }
}

func WithLevel(level zstd.EncoderLevel) ZstdOption {
	return func(o *zstdOptions) { o.level = level }
}

func NewZstd(opts ...ZstdOption) (*Zstd, error) {
	o := zstdOptions{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&o)
	}
	if o.minSize < 0 {
		return nil, errors.Newf("zstd: negative min size %d", o.minSize)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(o.level), zstd.WithZeroFrames(true))
	if err != nil {
		return nil, errors.Wrap(err, "zstd: create encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, errors.Wrap(err, "zstd: create decoder")
	}
	return &Zstd{minSize: o.minSize, enc: enc, dec: dec}, nil
}

func (z *Zstd) Name() string { return NameZstd }

func (z *Zstd) Worthwhile(size int) bool {
	return size >= z.minSize
}

func (z *Zstd) Compress(src []byte) ([]byte, error) {
	if z.enc == nil {
		return nil, zstd.ErrEncoderClosed
	}
	return z.enc.EncodeAll(src, nil), nil
}

func (z *Zstd) Decompress(src []byte) ([]byte, error) {
	if z.dec == nil {
		return nil, zstd.ErrDecoderClosed
	}
	return z.dec.DecodeAll(src, nil)
}

// Close 释放编解码器，之后的 Compress/Decompress 返回错误。
func (z *Zstd) Close() {
	if z.enc != nil {
		_ = z.enc.Close()
		z.enc = nil
	}
	if z.dec != nil {
		z.dec.Close()
		z.dec = nil
	}
}
