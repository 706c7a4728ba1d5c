package serializer

// Serializer 在数据体与某种字节格式之间转换。数据体即对象序列化得到的
// map[string]any，嵌套对象同样以 map[string]any 表示。
type Serializer interface {
	Name() string
	Marshal(body map[string]any) ([]byte, error)
	// Unmarshal 返回新的数据体，数字统一还原为 float64。
	Unmarshal(data []byte) (map[string]any, error)
}
