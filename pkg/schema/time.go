package schema

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateTime 的预置格式。
const (
	FormatISO       = "iso"
	FormatRFC       = "rfc"
	FormatTimestamp = "timestamp"
)

const (
	msgInvalidDateTime = "Not a valid datetime."
	msgInvalidDate     = "Not a valid date."
	dateLayout         = "2006-01-02"
)

// 不带时区的输入按 UTC 解析。
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	dateLayout,
}

var rfcLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// DateTime 在字符串与 time.Time 之间转换。
//
// Format 为空或为 "iso" 时使用 ISO 8601；"rfc" 使用 RFC 1123；"timestamp" 使用 Unix 秒；
// 其它值视为 Go 时间布局，包含 '%' 时按 strftime 语法解释（如 "%Y/%m/%d"）。
type DateTime struct {
	Format string
}

var _ Field = DateTime{}

func (f DateTime) Deserialize(_ context.Context, value any) (any, error) {
	if t, ok := value.(time.Time); ok {
		return t, nil
	}

	switch f.Format {
	case FormatTimestamp:
		if isBool(value) {
			return nil, Invalid(msgInvalidDateTime)
		}
		sec, err := cast.ToFloat64E(value)
		if err != nil || isSpecial(sec) {
			return nil, Invalid(msgInvalidDateTime)
		}
		whole := int64(sec)
		return time.Unix(whole, int64((sec-float64(whole))*1e9)).UTC(), nil
	}

	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, Invalid(msgInvalidDateTime)
	}
	s = strings.TrimSpace(s)

	var layouts []string
	switch f.Format {
	case "", FormatISO:
		layouts = isoLayouts
	case FormatRFC:
		layouts = rfcLayouts
	default:
		layouts = []string{Layout(f.Format)}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, Invalid(msgInvalidDateTime)
}

func (f DateTime) Serialize(_ context.Context, value any) any {
	t, ok := value.(time.Time)
	if !ok {
		return value
	}
	switch f.Format {
	case "", FormatISO:
		return t.Format(time.RFC3339Nano)
	case FormatRFC:
		return t.Format(time.RFC1123Z)
	case FormatTimestamp:
		return float64(t.UnixNano()) / 1e9
	default:
		return t.Format(Layout(f.Format))
	}
}

// Date 只保留日期部分，默认格式为 2006-01-02。
type Date struct {
	Format string
}

var _ Field = Date{}

func (f Date) layout() string {
	if f.Format == "" || f.Format == FormatISO {
		return dateLayout
	}
	return Layout(f.Format)
}

func (f Date) Deserialize(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		y, m, d := v.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case string:
		t, err := time.Parse(f.layout(), strings.TrimSpace(v))
		if err != nil {
			return nil, Invalid(msgInvalidDate)
		}
		return t, nil
	default:
		return nil, Invalid(msgInvalidDate)
	}
}

func (f Date) Serialize(_ context.Context, value any) any {
	if t, ok := value.(time.Time); ok {
		return t.Format(f.layout())
	}
	return value
}

var strftime = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "000000",
	'p': "PM",
	'z': "-0700",
	'Z': "MST",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'%': "%",
}

// Layout 将 strftime 风格的格式（如 "%Y/%m/%d"）转换为 Go 时间布局；
// 不含 '%' 的格式原样返回。
func Layout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		if layout, ok := strftime[format[i]]; ok {
			b.WriteString(layout)
		} else {
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}
