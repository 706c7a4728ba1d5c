package objectfactory

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/objectfactory-go/pkg/codec"
	"github.com/lk2023060901/objectfactory-go/pkg/config"
	"github.com/lk2023060901/objectfactory-go/pkg/log"
	"github.com/lk2023060901/objectfactory-go/pkg/metrics"
	"github.com/lk2023060901/objectfactory-go/pkg/util/conc"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

// tagSeparator 分隔完整类型标签中的命名空间与类型名。
const tagSeparator = "."

// Factory 维护类型标签到 *Class 的映射，并据此从数据体创建对象。
//
// 每个类以完整标签（"<命名空间>.<类型名>"）与短标签（类型名）各注册一次，
// 重复注册时后者覆盖前者。Factory 可被多个 goroutine 并发使用。
type Factory struct {
	log.Binder

	name          string
	typeKey       string
	batchWorkers  int
	warnCollision bool

	mu      sync.RWMutex
	classes map[string]*Class
}

// Option 用于配置 Factory。
type Option func(*Factory)

// WithName 设置 Factory 名称，用于日志与指标标签。
func WithName(name string) Option {
	return func(f *Factory) {
		f.name = name
	}
}

// WithTypeKey 设置数据体中保存类型标签的键名。
func WithTypeKey(key string) Option {
	return func(f *Factory) {
		f.typeKey = key
	}
}

// WithBatchWorkers 设置 CreateAll 使用的协程数量。
func WithBatchWorkers(n int) Option {
	return func(f *Factory) {
		f.batchWorkers = n
	}
}

// WithCollisionWarning 设置不同类争用同一标签时是否输出告警日志。
func WithCollisionWarning(enable bool) Option {
	return func(f *Factory) {
		f.warnCollision = enable
	}
}

// WithLogger 为 Factory 绑定独立的 Logger。
func WithLogger(logger *log.MLogger) Option {
	return func(f *Factory) {
		f.SetLogger(logger)
	}
}

// WithConfig 按配置设置 Factory，零值配置项保持默认。
func WithConfig(cfg config.FactoryConfig) Option {
	return func(f *Factory) {
		if cfg.Name != "" {
			f.name = cfg.Name
		}
		if cfg.TypeKey != "" {
			f.typeKey = cfg.TypeKey
		}
		if cfg.BatchWorkers > 0 {
			f.batchWorkers = cfg.BatchWorkers
		}
		f.warnCollision = cfg.WarnTagCollision
	}
}

// NewFactory 创建一个空的 Factory。
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		name:          "default",
		typeKey:       TypeKey,
		batchWorkers:  runtime.GOMAXPROCS(0),
		warnCollision: true,
		classes:       make(map[string]*Class),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFactory = atomic.NewPointer(NewFactory())

// DefaultFactory 返回包级函数使用的默认 Factory。
func DefaultFactory() *Factory {
	return defaultFactory.Load()
}

// SetDefault 替换默认 Factory，返回被替换的实例。
func SetDefault(f *Factory) *Factory {
	return defaultFactory.Swap(f)
}

func (f *Factory) Name() string {
	return f.name
}

// TypeKey 返回数据体中保存类型标签的键名。
func (f *Factory) TypeKey() string {
	return f.typeKey
}

// Register 以完整标签与短标签注册 cls 并原样返回，便于在包级变量初始化时链式使用。
func (f *Factory) Register(cls *Class) *Class {
	tags := lo.Uniq([]string{cls.QualifiedName(), cls.Name()})

	f.mu.Lock()
	replaced := make(map[string]*Class)
	bound := false
	for _, tag := range tags {
		prev, ok := f.classes[tag]
		if ok && prev != cls {
			replaced[tag] = prev
		}
		bound = bound || prev != cls
		f.classes[tag] = cls
	}
	f.mu.Unlock()

	if bound {
		metrics.FactoryRegisteredClasses.WithLabelValues(f.name).Inc()
	}
	logger := f.Logger().With(zap.String("factory", f.name), log.FieldClass(cls.QualifiedName()))
	for tag, prev := range replaced {
		kind := metrics.QualifiedTagLabel
		if tag == cls.Name() && tag != cls.QualifiedName() {
			kind = metrics.ShortTagLabel
		}
		metrics.FactoryTagCollisions.WithLabelValues(f.name, kind).Inc()
		if f.warnCollision {
			logger.Warn("type tag is taken over by another class",
				log.FieldType(tag),
				zap.String("previous", prev.QualifiedName()))
		}
	}
	logger.Debug("class registered", zap.Strings("tags", tags))
	return cls
}

// Lookup 按类型标签查找类：先精确匹配，再以最后一个 "." 之后的部分匹配短标签。
func (f *Factory) Lookup(tag string) (*Class, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if cls, ok := f.classes[tag]; ok {
		return cls, true
	}
	if i := strings.LastIndex(tag, tagSeparator); i >= 0 {
		cls, ok := f.classes[tag[i+len(tagSeparator):]]
		return cls, ok
	}
	return nil, false
}

// Tags 返回已注册的全部类型标签，按字典序排列。
func (f *Factory) Tags() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	tags := lo.Keys(f.classes)
	slices.Sort(tags)
	return tags
}

// Len 返回已注册的标签数量。
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.classes)
}

// Clear 清空注册表。
func (f *Factory) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes = make(map[string]*Class)
}

// Create 根据 body 中的类型标签创建对象并反序列化。
//
// expected 不为 nil 时，解析出的类必须是 expected 或其子类，否则在反序列化前
// 返回 merr.ErrTypeMismatch。标签缺失或无法解析时返回 merr.ErrTypeNotFound。
func (f *Factory) Create(body Body, expected *Class) (Serializable, error) {
	return f.create(context.Background(), body, func(cls *Class) error {
		if expected != nil && !cls.IsSubclassOf(expected) {
			return merr.WrapErrTypeMismatch(cls.Name(), expected.Name())
		}
		return nil
	})
}

// CreateAs 与 Create 相同，以 Go 类型 T 作为期望类型。f 为 nil 时使用默认 Factory。
func CreateAs[T any](f *Factory, body Body) (T, error) {
	if f == nil {
		f = DefaultFactory()
	}
	var zero T
	obj, err := f.create(context.Background(), body, func(cls *Class) error {
		target := reflectType[T]()
		if cls.Type() != target && (target.Kind() != reflect.Interface || !cls.Type().Implements(target)) {
			return merr.WrapErrTypeMismatch(cls.Name(), typeName[T]())
		}
		return nil
	})
	if err != nil {
		return zero, err
	}
	return obj.(T), nil
}

func (f *Factory) resolve(body Body) (*Class, error) {
	raw, ok := body[f.typeKey]
	if !ok {
		return nil, merr.WrapErrTypeNotFound("", fmt.Sprintf("missing %s key", f.typeKey))
	}
	tag, ok := raw.(string)
	if !ok {
		return nil, merr.WrapErrTypeNotFound(fmt.Sprint(raw), "type tag is not a string")
	}
	cls, ok := f.Lookup(tag)
	if !ok {
		return nil, merr.WrapErrTypeNotFound(tag)
	}
	return cls, nil
}

func (f *Factory) create(ctx context.Context, body Body, check func(*Class) error) (obj Serializable, err error) {
	start := time.Now()
	defer func() {
		result := metrics.SuccessLabel
		if err != nil {
			result = metrics.FailLabel
			logFn := f.Logger().Warn
			if merr.IsInputError(err) {
				logFn = f.Logger().Debug
			}
			logFn("create object failed", zap.String("factory", f.name), zap.Int32("code", merr.Code(err)), zap.Error(err))
		}
		metrics.FactoryCreateTotal.WithLabelValues(f.name, result).Inc()
		metrics.FactoryCreateLatency.WithLabelValues(f.name).Observe(float64(time.Since(start).Microseconds()))
	}()

	cls, err := f.resolve(body)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(cls); err != nil {
			return nil, err
		}
	}
	obj = cls.newIn(f)
	if err := obj.base().deserialize(withFactory(ctx, f), body); err != nil {
		return nil, err
	}
	return obj, nil
}

// CreateAll 并发地从多个数据体创建对象，结果与输入顺序一致。任一失败时返回首个错误。
func (f *Factory) CreateAll(ctx context.Context, bodies []Body, expected *Class) ([]Serializable, error) {
	if len(bodies) == 0 {
		return []Serializable{}, nil
	}

	ctx, span := log.NewIntentContext(ctx, "objectfactory", "Factory.CreateAll")
	defer span.End()
	span.SetAttributes(
		attribute.String("factory", f.name),
		attribute.Int("batch.size", len(bodies)),
	)

	objs, err := f.createAll(ctx, bodies, expected)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch create failed")
		log.Ctx(ctx).Warn("batch create failed", zap.Int("size", len(bodies)), zap.Error(err))
		return nil, err
	}
	return objs, nil
}

func (f *Factory) createAll(ctx context.Context, bodies []Body, expected *Class) ([]Serializable, error) {
	// panic 已作为 Future 的错误返回给调用方，不再在 worker 中抛出
	pool := conc.NewPool[Serializable](lo.Clamp(f.batchWorkers, 1, len(bodies)), conc.WithConcealPanic(true))
	defer pool.Release()

	futures := make([]*conc.Future[Serializable], 0, len(bodies))
	for _, body := range bodies {
		if err := ctx.Err(); err != nil {
			// 等待已提交的任务结束后再释放协程池
			_ = conc.AwaitAll(futures...)
			return nil, err
		}
		futures = append(futures, pool.Submit(func() (Serializable, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return f.Create(body, expected)
		}))
	}
	if err := conc.AwaitAll(futures...); err != nil {
		return nil, err
	}
	return lo.Map(futures, func(future *conc.Future[Serializable], _ int) Serializable {
		return future.Value()
	}), nil
}

// Encode 序列化 obj 并用 c 编码为字节序列。
func (f *Factory) Encode(obj Serializable, c codec.Codec, opts ...SerializeOption) ([]byte, error) {
	data, err := c.Encode(obj.Serialize(opts...))
	if err != nil {
		metrics.CodecFailures.WithLabelValues(c.Name(), metrics.EncodeLabel).Inc()
		return nil, err
	}
	metrics.CodecPayloadBytes.WithLabelValues(c.Name(), metrics.EncodeLabel).Observe(float64(len(data)))
	return data, nil
}

// Decode 用 c 解码 data，并按其中的类型标签创建对象。
func (f *Factory) Decode(data []byte, c codec.Codec, expected *Class) (Serializable, error) {
	metrics.CodecPayloadBytes.WithLabelValues(c.Name(), metrics.DecodeLabel).Observe(float64(len(data)))
	body, err := c.Decode(data)
	if err != nil {
		metrics.CodecFailures.WithLabelValues(c.Name(), metrics.DecodeLabel).Inc()
		return nil, errors.Wrap(err, "decode payload")
	}
	return f.Create(body, expected)
}

// Register 在默认 Factory 中注册 cls。
func Register(cls *Class) *Class {
	return DefaultFactory().Register(cls)
}

// Create 使用默认 Factory 创建对象。
func Create(body Body, expected *Class) (Serializable, error) {
	return DefaultFactory().Create(body, expected)
}

// Clear 清空默认 Factory 的注册表。
func Clear() {
	DefaultFactory().Clear()
}
