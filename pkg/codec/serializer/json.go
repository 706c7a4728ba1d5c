package serializer

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/lk2023060901/objectfactory-go/internal/json"
)

const (
	NameJSON       = "json"
	NameJSONCompat = "jsoniter"
)

// JSONSerializer 基于 sonic（internal/json）。
type JSONSerializer struct{}

var _ Serializer = JSONSerializer{}

func (JSONSerializer) Name() string { return NameJSON }

func (JSONSerializer) Marshal(body map[string]any) ([]byte, error) {
	return json.Marshal(body)
}

func (JSONSerializer) Unmarshal(data []byte) (map[string]any, error) {
	body := make(map[string]any)
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// JSONCompatSerializer 使用 json-iterator 的标准库兼容配置，
// 用于 sonic 不支持的平台。
type JSONCompatSerializer struct{}

var _ Serializer = JSONCompatSerializer{}

var compatAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func (JSONCompatSerializer) Name() string { return NameJSONCompat }

func (JSONCompatSerializer) Marshal(body map[string]any) ([]byte, error) {
	return compatAPI.Marshal(body)
}

func (JSONCompatSerializer) Unmarshal(data []byte) (map[string]any, error) {
	body := make(map[string]any)
	if err := compatAPI.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	return body, nil
}
