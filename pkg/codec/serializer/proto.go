package serializer

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const NameProto = "proto"

// ProtoSerializer 以 google.protobuf.Struct 作为数据体的二进制载体。
// Struct 只能表达 JSON 值，通道、函数等取值会在 Marshal 时报错。
type ProtoSerializer struct {
	// Deterministic 使相同的数据体总是编码为相同的字节。
	Deterministic bool
}

var _ Serializer = ProtoSerializer{}

func (ProtoSerializer) Name() string { return NameProto }

func (p ProtoSerializer) Marshal(body map[string]any) ([]byte, error) {
	msg, err := structpb.NewStruct(body)
	if err != nil {
		return nil, errors.Wrap(err, "build protobuf struct")
	}
	return proto.MarshalOptions{Deterministic: p.Deterministic}.Marshal(msg)
}

func (ProtoSerializer) Unmarshal(data []byte) (map[string]any, error) {
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg.AsMap(), nil
}
