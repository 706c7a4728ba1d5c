package compressor

// Compressor 压缩序列化后的负载。由实现决定多大的负载值得压缩，
// Codec 只在 Worthwhile 返回 true 时调用 Compress，并以标志字节记录结果。
type Compressor interface {
	Name() string
	Worthwhile(size int) bool
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

const (
	NameNop  = "none"
	NameZstd = "zstd"
)

// Nop 从不压缩。
type Nop struct{}

var _ Compressor = Nop{}

func (Nop) Name() string { return NameNop }

func (Nop) Worthwhile(int) bool { return false }

func (Nop) Compress(src []byte) ([]byte, error) { return src, nil }

func (Nop) Decompress(src []byte) ([]byte, error) { return src, nil }
