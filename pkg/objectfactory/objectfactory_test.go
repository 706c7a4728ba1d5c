package objectfactory_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/objectfactory-go/pkg/codec"
	"github.com/lk2023060901/objectfactory-go/pkg/config"
	"github.com/lk2023060901/objectfactory-go/pkg/metrics"
	of "github.com/lk2023060901/objectfactory-go/pkg/objectfactory"
	"github.com/lk2023060901/objectfactory-go/pkg/schema"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

type FactorySuite struct {
	suite.Suite
	factory *of.Factory
}

func (s *FactorySuite) SetupTest() {
	s.factory = of.NewFactory(of.WithName("test"))
	for _, cls := range []*of.Class{
		BasicClass, DerivedClass, EmptyClass, SquareClass, CircleClass,
		ContainerClass, AccountClass, PrimitiveClass,
	} {
		s.factory.Register(cls)
	}
}

func (s *FactorySuite) create(body of.Body) of.Serializable {
	obj, err := s.factory.Create(body, nil)
	s.Require().NoError(err)
	return obj
}

func (s *FactorySuite) TestDefine() {
	s.Equal("Basic", BasicClass.Name())
	s.Equal("objectfactory_test", BasicClass.Namespace())
	s.Equal("objectfactory_test.Basic", BasicClass.QualifiedName())
	s.Equal([]string{"str_prop", "int_prop"}, BasicClass.FieldNames())
	s.Equal("_BasicSchema", BasicClass.Schema().Name())
	s.Equal(2, BasicClass.Schema().Len())
	s.False(BasicClass.HasCustomSchema())

	desc, ok := BasicClass.Field("str_prop")
	s.Require().True(ok)
	s.Equal("_str_prop", desc.Slot())
	s.Equal("str_prop", desc.Key())
	s.Len(BasicClass.Fields(), 2)
}

func (s *FactorySuite) TestEmptyClass() {
	obj := EmptyClass.New()
	s.Equal(of.Body{"_type": "objectfactory_test.Empty"}, obj.Serialize())
	s.Empty(obj.Serialize(of.WithoutType()))
	s.NoError(obj.Deserialize(of.Body{"anything": 1}))
	s.Equal(0, EmptyClass.Schema().Len())
}

func (s *FactorySuite) TestSerialize() {
	obj := of.New[*Basic](BasicClass)
	s.Equal(of.Body{
		"_type":    "objectfactory_test.Basic",
		"str_prop": "default",
		"int_prop": nil,
	}, obj.Serialize())
	s.False(basicStr.IsSet(obj))

	basicStr.Set(obj, "hello")
	basicInt.Set(obj, 99)
	s.Equal(of.Body{
		"_type":    "Basic",
		"str_prop": "hello",
		"int_prop": 99,
	}, obj.Serialize(of.WithShortType()))
	s.Equal(of.Body{"str_prop": "hello", "int_prop": 99}, obj.Serialize(of.WithoutType()))

	basicStr.Reset(obj)
	s.Equal("default", obj.Str())
	s.True(basicStr.IsSet(obj))
}

func (s *FactorySuite) TestRoundTrip() {
	obj := of.New[*Container](ContainerClass)
	containerName.Set(obj, "root")
	child := of.New[*Basic](BasicClass)
	basicStr.Set(child, "child")
	basicInt.Set(child, 7)
	containerChild.Set(obj, child)

	square := of.New[*Square](SquareClass)
	squareSide.Set(square, 1.5)
	of.Append(containerItems, obj, of.Serializable(square), of.Serializable(child))

	body := obj.Serialize()
	created := s.create(body)
	s.IsType(&Container{}, created)
	s.Equal(body, created.Serialize())

	items := containerItems.Get(created)
	s.Require().Len(items, 2)
	s.Equal(1.5, squareSide.Get(items[0]))
	s.Equal(7, basicInt.Get(items[1]))
	s.Equal("child", containerChild.Get(created).(*Basic).Str())
}

func (s *FactorySuite) TestDefaultIsolation() {
	a := ContainerClass.New()
	b := ContainerClass.New()

	of.Append(containerItems, a, BasicClass.New())
	s.Len(containerItems.Get(a), 1)
	s.Len(containerItems.Get(b), 0)

	x := AccountClass.New()
	y := AccountClass.New()
	of.Append(accountTags, x, "vip")
	s.Equal([]string{"vip"}, accountTags.Get(x))
	s.Empty(accountTags.Get(y))
	s.NotNil(accountTags.Get(y))
}

func (s *FactorySuite) TestInheritance() {
	s.Equal([]string{"str_prop", "int_prop", "float_prop"}, DerivedClass.FieldNames())
	desc, _ := DerivedClass.Field("str_prop")
	s.Equal("str", desc.Key())
	desc, _ = BasicClass.Field("str_prop")
	s.Equal("str_prop", desc.Key())

	s.True(DerivedClass.IsSubclassOf(BasicClass))
	s.True(DerivedClass.IsSubclassOf(DerivedClass))
	s.False(BasicClass.IsSubclassOf(DerivedClass))
	s.False(DerivedClass.IsSubclassOf(nil))

	obj := of.New[*Derived](DerivedClass)
	s.Equal(of.Body{
		"_type":      "objectfactory_test.Derived",
		"str":        "derived",
		"int_prop":   nil,
		"float_prop": nil,
	}, obj.Serialize())

	s.NoError(obj.Deserialize(of.Body{"str": "x", "int_prop": 5, "float_prop": 1}))
	s.Equal("x", derivedStr.Get(obj))
	s.Equal(5, obj.Int())
	s.Equal(1.0, derivedFloat.Get(obj))
}

func (s *FactorySuite) TestTagResolution() {
	for _, tag := range []string{"objectfactory_test.Square", "pkg.mod.Square", "Square", "other.mod.Square"} {
		obj, err := s.factory.Create(of.Body{"_type": tag, "side": 1.0}, nil)
		s.Require().NoError(err, tag)
		s.IsType(&Square{}, obj, tag)
	}

	cls, ok := s.factory.Lookup("a.b.Circle")
	s.True(ok)
	s.Equal(CircleClass, cls)
	_, ok = s.factory.Lookup("Hexagon")
	s.False(ok)
	s.Contains(s.factory.Tags(), "objectfactory_test.Square")
	s.Contains(s.factory.Tags(), "Square")
}

func (s *FactorySuite) TestTypeNotFound() {
	_, err := s.factory.Create(of.Body{"_type": "shapes.Hexagon"}, nil)
	s.ErrorIs(err, merr.ErrTypeNotFound)
	s.Contains(err.Error(), "object type shapes.Hexagon not found in factory registry")

	_, err = s.factory.Create(of.Body{"side": 1.0}, nil)
	s.ErrorIs(err, merr.ErrTypeNotFound)

	_, err = s.factory.Create(of.Body{"_type": 12}, nil)
	s.ErrorIs(err, merr.ErrTypeNotFound)
}

func (s *FactorySuite) TestTypeMismatch() {
	// 类型检查先于反序列化
	body := of.Body{"_type": "Circle", "radius": "not a number"}
	_, err := s.factory.Create(body, SquareClass)
	s.ErrorIs(err, merr.ErrTypeMismatch)
	s.Contains(err.Error(), "Circle is not an instance of type: Square")

	_, err = of.CreateAs[*Square](s.factory, body)
	s.ErrorIs(err, merr.ErrTypeMismatch)

	square, err := of.CreateAs[*Square](s.factory, of.Body{"_type": "Square", "side": 3})
	s.NoError(err)
	s.Equal(9.0, square.Area())

	anyObj, err := of.CreateAs[of.Serializable](s.factory, of.Body{"_type": "Circle", "radius": 1})
	s.NoError(err)
	s.Equal(CircleClass, anyObj.Class())

	derived, err := s.factory.Create(of.Body{"_type": "Derived"}, BasicClass)
	s.NoError(err)
	s.Equal(DerivedClass, derived.Class())
}

func (s *FactorySuite) TestMissingFieldTolerance() {
	obj := s.create(of.Body{"_type": "Basic"})
	s.Equal("default", obj.(*Basic).Str())
	s.False(basicInt.IsSet(obj))

	basicInt.Set(obj, 3)
	s.NoError(obj.Deserialize(of.Body{"str_prop": "changed"}))
	s.Equal(3, basicInt.Get(obj))
	s.Equal("changed", basicStr.Get(obj))
}

func (s *FactorySuite) TestSquareScenario() {
	obj := s.create(of.Body{"_type": "Square", "side": 2.0})
	square, ok := obj.(*Square)
	s.Require().True(ok)
	s.Equal(2.0, squareSide.Get(square))
	s.Equal(4.0, square.Area())
}

func (s *FactorySuite) TestPinnedNestedWithoutRegistration() {
	f := of.NewFactory()
	f.Register(ContainerClass)
	_, ok := f.Lookup("Basic")
	s.Require().False(ok)

	obj, err := f.Create(of.Body{"_type": "Container", "child": of.Body{"str_prop": "x"}}, nil)
	s.Require().NoError(err)
	child, ok := containerChild.Get(obj).(*Basic)
	s.Require().True(ok)
	s.Equal("x", child.Str())
	s.Equal(f, child.Factory())
}

func (s *FactorySuite) TestNested() {
	obj := s.create(of.Body{
		"_type": "Container",
		"child": of.Body{"_type": "Derived", "str": "tagged"},
		"any":   of.Body{"_type": "Circle", "radius": 2},
	})
	s.Equal(DerivedClass, containerChild.Get(obj).Class())
	s.Equal("tagged", derivedStr.Get(containerChild.Get(obj)))
	s.Equal(2.0, circleRadius.Get(containerAny.Get(obj)))

	_, err := s.factory.Create(of.Body{"_type": "Container", "child": of.Body{"_type": "Square"}}, nil)
	s.ErrorIs(err, merr.ErrNestedTypeMismatch)
	s.Contains(err.Error(), "Square is not an instance of type: Basic")

	_, err = s.factory.Create(of.Body{"_type": "Container", "any": of.Body{"radius": 2}}, nil)
	s.ErrorIs(err, merr.ErrTypeNotInferable)

	obj = s.create(of.Body{"_type": "Container", "child": nil})
	s.False(containerChild.IsSet(obj))
	s.Nil(obj.Serialize()["child"])

	_, err = s.factory.Create(of.Body{"_type": "Container", "child": "not a body"}, nil)
	s.ErrorIs(err, merr.ErrValidationFailed)
}

func (s *FactorySuite) TestNestedCustomTypeKey() {
	f := of.NewFactory(of.WithTypeKey("kind"))
	f.Register(ContainerClass)
	f.Register(SquareClass)

	parent, err := f.Create(of.Body{"kind": "Container", "name": "box"}, nil)
	s.Require().NoError(err)
	child := SquareClass.New()
	squareSide.Set(child, 2)
	containerAny.Set(parent, child)
	of.Append(containerItems, parent, child)

	body := parent.Serialize()
	s.Equal("objectfactory_test.Container", body["kind"])
	s.NotContains(body, "_type")
	s.Equal("objectfactory_test.Square", body["any"].(of.Body)["kind"])
	s.NotContains(body["any"], "_type")

	loaded, err := f.Create(body, ContainerClass)
	s.Require().NoError(err)
	s.Equal(2.0, squareSide.Get(containerAny.Get(loaded)))
	s.Require().Len(containerItems.Get(loaded), 1)
	s.Equal(SquareClass, containerItems.Get(loaded)[0].Class())
}

func (s *FactorySuite) TestTypedNilChild() {
	parent := ContainerClass.New()
	containerAny.Set(parent, (*Square)(nil))
	containerChild.Set(parent, (*Basic)(nil))
	s.Nil(containerAny.Get(parent))

	var body of.Body
	s.NotPanics(func() { body = parent.Serialize() })
	s.Nil(body["any"])
	s.Nil(body["child"])

	of.Append(containerItems, parent, of.Serializable((*Square)(nil)))
	s.NotPanics(func() { parent.Serialize() })
}

func (s *FactorySuite) TestNestedSerializeOptions() {
	obj := ContainerClass.New()
	child := BasicClass.New()
	basicStr.Set(child, "c")
	containerChild.Set(obj, child)

	body := obj.Serialize(of.WithShortType())
	s.Equal("Container", body["_type"])
	s.Equal("Basic", body["child"].(of.Body)["_type"])

	body = obj.Serialize(of.WithoutType())
	s.NotContains(body, "_type")
	s.NotContains(body["child"].(of.Body), "_type")
}

func (s *FactorySuite) TestList() {
	obj := s.create(of.Body{
		"_type": "Container",
		"items": []any{
			of.Body{"_type": "Square", "side": 1},
			of.Body{"_type": "Circle", "radius": 2},
		},
		"pinned": []any{
			of.Body{"str_prop": "a"},
			of.Body{"_type": "Derived", "str": "b"},
		},
	})
	items := containerItems.Get(obj)
	s.Require().Len(items, 2)
	s.Equal(SquareClass, items[0].Class())
	s.Equal(CircleClass, items[1].Class())

	pinned := containerPinned.Get(obj)
	s.Require().Len(pinned, 2)
	s.Equal("a", pinned[0].(*Basic).Str())
	s.Equal(DerivedClass, pinned[1].Class())

	_, err := s.factory.Create(of.Body{
		"_type": "Container",
		"items": []any{of.Body{"_type": "Square"}, of.Body{"_type": "Hexagon"}},
	}, nil)
	s.ErrorIs(err, merr.ErrTypeNotFound)

	_, err = s.factory.Create(of.Body{"_type": "Container", "items": []any{of.Body{"side": 1}}}, nil)
	s.ErrorIs(err, merr.ErrTypeNotInferable)

	_, err = s.factory.Create(of.Body{"_type": "Container", "pinned": []any{of.Body{"_type": "Circle"}}}, nil)
	s.ErrorIs(err, merr.ErrNestedTypeMismatch)

	_, err = s.factory.Create(of.Body{"_type": "Container", "items": []any{1}}, nil)
	s.ErrorIs(err, merr.ErrValidationFailed)
}

func (s *FactorySuite) TestValidationError() {
	obj := BasicClass.New()
	basicInt.Set(obj, 1)
	err := obj.Deserialize(of.Body{"str_prop": "ok", "int_prop": "abc"})
	s.ErrorIs(err, merr.ErrValidationFailed)

	var verr *schema.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal([]string{"Not a valid integer."}, verr.Messages("int_prop"))
	// 校验失败时对象保持不变
	s.Equal(1, basicInt.Get(obj))
	s.False(basicStr.IsSet(obj))
}

func (s *FactorySuite) TestRequiredAndValidators() {
	_, err := s.factory.Create(of.Body{"_type": "Account"}, nil)
	var verr *schema.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal([]string{schema.MsgRequired}, verr.Messages("id"))

	_, err = s.factory.Create(of.Body{"_type": "Account", "id": 5000}, nil)
	s.ErrorIs(err, merr.ErrValidationFailed)

	_, err = s.factory.Create(of.Body{"_type": "Account", "id": 1, "email": "nope"}, nil)
	s.ErrorIs(err, merr.ErrValidationFailed)

	_, err = s.factory.Create(of.Body{"_type": "Account", "id": 1, "scores": []any{1, "x"}}, nil)
	s.Require().True(errors.As(err, &verr))
	s.Equal([]string{"[1] Not a valid integer."}, verr.Messages("scores"))
}

func (s *FactorySuite) TestAllowNone() {
	obj := s.create(of.Body{"_type": "Account", "id": 1, "name": nil})
	s.True(accountName.IsSet(obj))
	s.Equal("", accountName.Get(obj))
	s.Nil(obj.Serialize()["name"])

	obj = s.create(of.Body{"_type": "Account", "id": 1, "name": "jane", "email": "jane@example.com", "tags": []any{"a"}, "scores": []any{1.0, 2}})
	s.Equal("jane", accountName.Get(obj))
	s.Equal("jane@example.com", accountEmail.Get(obj))
	s.Equal([]string{"a"}, accountTags.Get(obj))
	s.Equal([]int{1, 2}, accountScore.Get(obj))
}

func (s *FactorySuite) TestFromKwargsAndFromDict() {
	obj, err := BasicClass.FromKwargs(map[string]any{"str_prop": "kw", "int_prop": int64(4)})
	s.Require().NoError(err)
	s.Equal("kw", basicStr.Get(obj))
	s.Equal(4, basicInt.Get(obj))

	_, err = BasicClass.FromKwargs(map[string]any{"int_prop": "four"})
	s.ErrorIs(err, merr.ErrFieldTypeMismatch)

	obj, err = BasicClass.FromKwargs(map[string]any{"int_prop": 4.0})
	s.Require().NoError(err)
	s.Equal(4, basicInt.Get(obj))

	_, err = BasicClass.FromKwargs(map[string]any{"int_prop": 4.9})
	s.ErrorIs(err, merr.ErrFieldTypeMismatch)

	_, err = BasicClass.FromKwargs(map[string]any{"missing": 1})
	s.ErrorIs(err, merr.ErrFieldNotFound)

	obj, err = BasicClass.FromDict(of.Body{"str_prop": "dict", "int_prop": 4.9})
	s.Require().NoError(err)
	s.Equal(4, basicInt.Get(obj))

	_, err = BasicClass.FromDict(of.Body{"int_prop": true})
	s.ErrorIs(err, merr.ErrValidationFailed)
}

func (s *FactorySuite) TestPrimitives() {
	est := time.FixedZone("EST", -5*3600)
	obj := PrimitiveClass.New()
	primBool.Set(obj, true)
	primWhen.Set(obj, time.Date(2024, 1, 14, 6, 30, 0, 0, est))
	primDay.Set(obj, time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC))
	primRaw.Set(obj, map[string]any{"k": []any{1, 2}})
	primFlags.Set(obj, []bool{true, false})
	primRatios.Set(obj, []float64{0.5})

	body := obj.Serialize(of.WithoutType())
	s.Equal(true, body["bool_prop"])
	s.Equal("2024-01-14T06:30:00-05:00", body["when"])
	s.Equal("2012/03/04", body["day"])
	s.Equal(map[string]any{"k": []any{1, 2}}, body["raw"])
	s.Equal([]any{true, false}, body["flags"])
	s.Equal([]any{0.5}, body["ratios"])

	loaded := PrimitiveClass.New()
	s.Require().NoError(loaded.Deserialize(of.Body{
		"bool_prop": "yes",
		"when":      "2024-01-14T06:30:00",
		"day":       "2012/03/04",
		"raw":       []any{"x"},
		"flags":     []any{1, "off"},
		"ratios":    []any{99},
	}))
	s.True(primBool.Get(loaded))
	s.True(time.Date(2024, 1, 14, 6, 30, 0, 0, time.UTC).Equal(primWhen.Get(loaded)))
	s.True(time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC).Equal(primDay.Get(loaded)))
	s.Equal([]any{"x"}, primRaw.Get(loaded))
	s.Equal([]bool{true, false}, primFlags.Get(loaded))
	s.Equal([]float64{99}, primRatios.Get(loaded))

	for _, invalid := range []any{2, 1.1, "helloworld"} {
		err := loaded.Deserialize(of.Body{"bool_prop": invalid})
		s.ErrorIs(err, merr.ErrValidationFailed, "%v", invalid)
	}
	s.ErrorIs(loaded.Deserialize(of.Body{"day": "2012-03-04"}), merr.ErrValidationFailed)
}

func (s *FactorySuite) TestRawIsCopied() {
	src := []any{"a", "b"}
	obj, err := PrimitiveClass.FromDict(of.Body{"raw": src})
	s.Require().NoError(err)
	src[0] = "changed"
	s.Equal([]any{"a", "b"}, primRaw.Get(obj))

	body := obj.Serialize()
	body["raw"].([]any)[1] = "mutated"
	s.Equal([]any{"a", "b"}, primRaw.Get(obj))
}

func (s *FactorySuite) TestCustomSchema() {
	s.True(DatedClass.HasCustomSchema())
	s.Equal("CustomSchema", DatedClass.Schema().Name())

	obj := DatedClass.New()
	datedDate.Set(obj, time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC))
	body := obj.Serialize()
	s.Equal("2012-03-04", body["date"])
	s.Equal("objectfactory_test.Dated", body["_type"])

	loaded := DatedClass.New()
	s.Require().NoError(loaded.Deserialize(of.Body{"_type": "Dated", "date": "2012-03-04"}))
	day := datedDate.Get(loaded).(time.Time)
	s.Equal(2012, day.Year())
	s.Equal(time.March, day.Month())
	s.Equal(4, day.Day())

	s.ErrorIs(loaded.Deserialize(of.Body{"date": "2012-03-45"}), merr.ErrValidationFailed)
}

func (s *FactorySuite) TestCustomField() {
	obj := ShoutyClass.New()
	shoutyStr.Set(obj, "HELLO")
	s.Equal("hello", obj.Serialize()["str_prop"])

	s.Require().NoError(obj.Deserialize(of.Body{"str_prop": "hello"}))
	s.Equal("HELLO", shoutyStr.Get(obj))
}

func (s *FactorySuite) TestClone() {
	obj := of.New[*Container](ContainerClass)
	child := of.New[*Basic](BasicClass)
	basicStr.Set(child, "original")
	containerChild.Set(obj, child)
	of.Append(containerItems, obj, of.Serializable(child))

	cp := of.Clone(obj)
	s.Equal(obj.Serialize(), cp.Serialize())

	basicStr.Set(child, "changed")
	s.Equal("original", containerChild.Get(cp).(*Basic).Str())
	s.Equal("original", basicStr.Get(containerItems.Get(cp)[0]))
}

func (s *FactorySuite) TestLiteralObject() {
	square := &Square{}
	s.Nil(square.Class())
	squareSide.Set(square, 3)
	s.Equal(SquareClass, square.Class())
	s.Equal(of.Body{"_type": "objectfactory_test.Square", "side": 3.0}, square.Serialize())

	s.Panics(func() {
		(&scratchA{}).Serialize()
	})
}

func (s *FactorySuite) TestDescriptorRebind() {
	shared := of.String()
	of.Define[scratchA](of.Named("scratch", "A"), of.Declare("a", shared))
	s.Panics(func() {
		of.Define[scratchB](of.Named("scratch", "B"), of.Declare("b", shared))
	})
	s.Panics(func() {
		of.Integer(of.Default("not an int"))
	})
}

func (s *FactorySuite) TestTagCollision() {
	f := of.NewFactory(of.WithName("collision"))
	first := of.Define[scratchA](of.Named("left", "Dup"))
	second := of.Define[scratchB](of.Named("right", "Dup"))
	f.Register(first)
	f.Register(second)

	cls, _ := f.Lookup("Dup")
	s.Equal(second, cls)
	cls, _ = f.Lookup("left.Dup")
	s.Equal(first, cls)
	s.Equal(3, f.Len())
	s.Equal(float64(1), testutil.ToFloat64(metrics.FactoryTagCollisions.WithLabelValues("collision", metrics.ShortTagLabel)))

	f.Register(second)
	s.Equal(float64(1), testutil.ToFloat64(metrics.FactoryTagCollisions.WithLabelValues("collision", metrics.ShortTagLabel)))

	f.Clear()
	s.Equal(0, f.Len())
}

func (s *FactorySuite) TestRegisterCountsNewBindings() {
	f := of.NewFactory(of.WithName("rebind"))
	registered := metrics.FactoryRegisteredClasses.WithLabelValues("rebind")

	f.Register(SquareClass)
	s.Equal(float64(1), testutil.ToFloat64(registered))
	f.Register(SquareClass)
	s.Equal(float64(1), testutil.ToFloat64(registered))

	f.Register(CircleClass)
	s.Equal(float64(2), testutil.ToFloat64(registered))
}

func (s *FactorySuite) TestCreateAll() {
	bodies := make([]of.Body, 0, 32)
	for i := 0; i < 32; i++ {
		bodies = append(bodies, of.Body{"_type": "Basic", "int_prop": i})
	}
	objs, err := s.factory.CreateAll(context.Background(), bodies, BasicClass)
	s.Require().NoError(err)
	s.Require().Len(objs, 32)
	for i, obj := range objs {
		s.Equal(i, basicInt.Get(obj))
	}

	bodies[10] = of.Body{"_type": "Circle"}
	_, err = s.factory.CreateAll(context.Background(), bodies, BasicClass)
	s.ErrorIs(err, merr.ErrTypeMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.factory.CreateAll(ctx, bodies, nil)
	s.ErrorIs(err, context.Canceled)

	s.factory.Register(FragileClass)
	fragile := []of.Body{
		{"_type": "Fragile", "value": "fine"},
		{"_type": "Fragile", "value": "boom"},
	}
	_, err = s.factory.CreateAll(context.Background(), fragile, nil)
	s.Error(err)
	s.Contains(err.Error(), "task panicked")

	objs, err = s.factory.CreateAll(context.Background(), nil, nil)
	s.NoError(err)
	s.Empty(objs)
}

func (s *FactorySuite) TestEncodeDecode() {
	obj := of.New[*Container](ContainerClass)
	containerName.Set(obj, "payload")
	child := of.New[*Basic](BasicClass)
	basicInt.Set(child, 42)
	containerChild.Set(obj, child)
	square := of.New[*Square](SquareClass)
	squareSide.Set(square, 2)
	of.Append(containerItems, obj, of.Serializable(square))

	zstd, err := codec.ByName("proto", "zstd")
	s.Require().NoError(err)
	for _, c := range []codec.Codec{codec.JSON(), codec.JSONCompat(), codec.Proto(), zstd} {
		data, err := s.factory.Encode(obj, c)
		s.Require().NoError(err, c.Name())

		decoded, err := s.factory.Decode(data, c, ContainerClass)
		s.Require().NoError(err, c.Name())
		s.Equal("payload", containerName.Get(decoded), c.Name())
		s.Equal(42, basicInt.Get(containerChild.Get(decoded)), c.Name())
		s.Equal(4.0, containerItems.Get(decoded)[0].(*Square).Area(), c.Name())
	}

	_, err = s.factory.Decode([]byte{9, 1, 2}, codec.JSON(), nil)
	s.ErrorIs(err, merr.ErrCodecFailed)
}

func (s *FactorySuite) TestTypeKeyOption() {
	cfg := config.Default().Factory
	cfg.Name = "custom"
	cfg.TypeKey = "kind"
	f := of.NewFactory(of.WithConfig(cfg))
	f.Register(SquareClass)
	s.Equal("kind", f.TypeKey())
	s.Equal("custom", f.Name())

	obj, err := f.Create(of.Body{"kind": "Square", "side": 2}, nil)
	s.Require().NoError(err)
	body := obj.Serialize(of.WithShortType())
	s.Equal("Square", body["kind"])
	s.NotContains(body, "_type")

	_, err = f.Create(of.Body{"_type": "Square"}, nil)
	s.ErrorIs(err, merr.ErrTypeNotFound)
}

func TestFactory(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func TestDefaultFactory(t *testing.T) {
	f := of.NewFactory()
	prev := of.SetDefault(f)
	defer of.SetDefault(prev)
	if of.DefaultFactory() != f {
		t.Fatal("SetDefault did not replace the default factory")
	}
	if got := SquareClass.New().(*Square).Factory(); got != f {
		t.Fatalf("new objects bind to %v, want the default factory", got.Name())
	}

	of.Register(SquareClass)
	obj, err := of.Create(of.Body{"_type": "Square", "side": 5}, SquareClass)
	if err != nil {
		t.Fatal(err)
	}
	if got := obj.(*Square).Area(); got != 25 {
		t.Fatalf("area = %v", got)
	}

	square, err := of.CreateAs[*Square](nil, of.Body{"_type": "objectfactory_test.Square", "side": 1})
	if err != nil || square.Area() != 1 {
		t.Fatalf("CreateAs = %v, %v", square, err)
	}

	of.Clear()
	_, err = of.Create(of.Body{"_type": "Square"}, nil)
	if !errors.Is(err, merr.ErrTypeNotFound) {
		t.Fatalf("expected type not found, got %v", err)
	}
}
