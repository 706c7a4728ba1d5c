// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	codecMetricSubsystem = "codec"

	codecLabelName     = "codec"
	directionLabelName = "direction"

	EncodeLabel = "encode"
	DecodeLabel = "decode"
)

var (
	// sizeBuckets 为数据大小的桶划分，单位为字节。
	sizeBuckets = prometheus.ExponentialBuckets(64, 4, 12)

	CodecPayloadBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: objectFactoryNamespace,
		Subsystem: codecMetricSubsystem,
		Name:      "payload_bytes",
		Help:      "编码后（解码前）数据的字节数",
		Buckets:   sizeBuckets,
	}, []string{codecLabelName, directionLabelName})

	CodecFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: objectFactoryNamespace,
		Subsystem: codecMetricSubsystem,
		Name:      "failures_total",
		Help:      "编解码失败的次数",
	}, []string{codecLabelName, directionLabelName})
)

func registerCodecMetrics(r prometheus.Registerer) {
	r.MustRegister(CodecPayloadBytes)
	r.MustRegister(CodecFailures)
}
