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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// objectFactoryNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	objectFactoryNamespace = "objectfactory"

	factorySubsystem = "factory"

	// 以下为当前使用的通用标签名。
	factoryLabelName = "factory"
	resultLabelName  = "result"
	tagKindLabelName = "tag_kind"

	SuccessLabel = "success"
	FailLabel    = "fail"

	QualifiedTagLabel = "qualified"
	ShortTagLabel     = "short"
)

var (
	// buckets 为耗时直方图的桶划分，单位为微秒。
	// 实际桶分布为：
	// [1 2 4 8 16 32 64 128 256 512 1024 2048 4096 8192 16384 32768 65536 1.31072e+05]
	buckets = prometheus.ExponentialBuckets(1, 2, 18)

	FactoryRegisteredClasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: objectFactoryNamespace,
			Subsystem: factorySubsystem,
			Name:      "registered_classes_total",
			Help:      "number of class registrations",
		}, []string{factoryLabelName})

	FactoryTagCollisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: objectFactoryNamespace,
			Subsystem: factorySubsystem,
			Name:      "tag_collisions_total",
			Help:      "number of registrations that replaced a tag owned by a different class",
		}, []string{factoryLabelName, tagKindLabelName})

	FactoryCreateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: objectFactoryNamespace,
			Subsystem: factorySubsystem,
			Name:      "create_total",
			Help:      "number of objects created from bodies",
		}, []string{factoryLabelName, resultLabelName})

	FactoryCreateLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: objectFactoryNamespace,
			Subsystem: factorySubsystem,
			Name:      "create_latency",
			Help:      "latency of creating one object from a body, in microseconds",
			Buckets:   buckets,
		}, []string{factoryLabelName})

	registerOnce     sync.Once
	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标，重复调用只生效一次。
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(FactoryRegisteredClasses)
		r.MustRegister(FactoryTagCollisions)
		r.MustRegister(FactoryCreateTotal)
		r.MustRegister(FactoryCreateLatency)
		registerCodecMetrics(r)
		metricRegisterer = r
	})
}
