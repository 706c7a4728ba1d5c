package objectfactory_test

import (
	"context"
	"fmt"
	"strings"

	of "github.com/lk2023060901/objectfactory-go/pkg/objectfactory"
	"github.com/lk2023060901/objectfactory-go/pkg/schema"
)

type Basic struct {
	of.Object
}

var (
	basicStr   = of.String(of.Default("default"))
	basicInt   = of.Integer()
	BasicClass = of.Define[Basic](
		of.Declare("str_prop", basicStr),
		of.Declare("int_prop", basicInt),
	)
)

func (b *Basic) Str() string { return basicStr.Get(b) }
func (b *Basic) Int() int    { return basicInt.Get(b) }

type Derived struct {
	Basic
}

var (
	derivedStr   = of.String(of.Default("derived"), of.Key("str"))
	derivedFloat = of.Float()
	DerivedClass = of.Define[Derived](
		of.Extends(BasicClass),
		of.Declare("str_prop", derivedStr),
		of.Declare("float_prop", derivedFloat),
	)
)

type Empty struct {
	of.Object
}

var EmptyClass = of.Define[Empty]()

type Square struct {
	of.Object
}

var (
	squareSide  = of.Float()
	SquareClass = of.Define[Square](of.Declare("side", squareSide))
)

func (s *Square) Area() float64 {
	side := squareSide.Get(s)
	return side * side
}

type Circle struct {
	of.Object
}

var (
	circleRadius = of.Float()
	CircleClass  = of.Define[Circle](of.Declare("radius", circleRadius))
)

type Container struct {
	of.Object
}

var (
	containerName   = of.String()
	containerChild  = of.Nested(of.FieldType(BasicClass))
	containerAny    = of.Nested()
	containerItems  = of.List()
	containerPinned = of.List(of.FieldType(BasicClass))
	ContainerClass  = of.Define[Container](
		of.Declare("name", containerName),
		of.Declare("child", containerChild),
		of.Declare("any", containerAny),
		of.Declare("items", containerItems),
		of.Declare("pinned", containerPinned),
	)
)

type Account struct {
	of.Object
}

var (
	accountID    = of.Integer(of.Required(), of.Validate(schema.Range(1, 1000)))
	accountName  = of.String(of.Key("name"), of.AllowNone())
	accountEmail = of.Email()
	accountTags  = of.StringList()
	accountScore = of.IntegerList()
	AccountClass = of.Define[Account](
		of.Declare("id", accountID),
		of.Declare("display_name", accountName),
		of.Declare("email", accountEmail),
		of.Declare("tags", accountTags),
		of.Declare("scores", accountScore),
	)
)

type Primitives struct {
	of.Object
}

var (
	primBool       = of.Boolean()
	primWhen       = of.DateTime()
	primDay        = of.DateTime(of.Format("%Y/%m/%d"))
	primRaw        = of.Raw()
	primFlags      = of.BooleanList()
	primRatios     = of.FloatList()
	PrimitiveClass = of.Define[Primitives](
		of.Declare("bool_prop", primBool),
		of.Declare("when", primWhen),
		of.Declare("day", primDay),
		of.Declare("raw", primRaw),
		of.Declare("flags", primFlags),
		of.Declare("ratios", primRatios),
	)
)

type Dated struct {
	of.Object
}

var (
	datedDate  = of.Raw()
	DatedClass = of.Define[Dated](
		of.WithSchema(schema.New("CustomSchema", schema.NewSpec("date", schema.Date{}))),
		of.Declare("date", datedDate),
	)
)

type Shouty struct {
	of.Object
}

var (
	shoutyStr   = of.Raw()
	ShoutyClass = of.Define[Shouty](
		of.WithSchema(schema.New("CustomSchema", schema.NewSpec("str_prop", schema.Func{
			Load: func(_ context.Context, v any) (any, error) {
				return strings.ToUpper(fmt.Sprint(v)), nil
			},
			Dump: func(_ context.Context, v any) any {
				return strings.ToLower(fmt.Sprint(v))
			},
		}))),
		of.Declare("str_prop", shoutyStr),
	)
)

type scratchA struct {
	of.Object
}

type scratchB struct {
	of.Object
}

type Fragile struct {
	of.Object
}

var (
	fragileValue = of.Raw(of.Engine(schema.Func{
		Load: func(_ context.Context, v any) (any, error) {
			if v == "boom" {
				panic("fragile value")
			}
			return v, nil
		},
	}))
	FragileClass = of.Define[Fragile](of.Declare("value", fragileValue))
)
