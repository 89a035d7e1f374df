package domain

import (
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Value is a single table cell. The zero value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	tm   time.Time
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Time(t time.Time) Value { return Value{kind: KindTime, tm: t} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Str() string { return v.str }
func (v Value) Num() float64 { return v.num }
func (v Value) TimeVal() time.Time { return v.tm }

// Float returns the numeric content of v and whether it has one.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders v the way it is written to CSV files.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		if isMidnight(v.tm) {
			return v.tm.Format(DateLayout)
		}
		return v.tm.Format(DateTimeLayout)
	default:
		return ""
	}
}

// Equal reports whether a and b hold the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.tm.Equal(o.tm)
	default:
		return true
	}
}

// Key encodes v without loss, for use in map keys. Times are keyed by instant
// at nanosecond precision, whatever their zone.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return "s" + v.str
	case KindNumber:
		if v.num == 0 {
			return "n0"
		}
		return "n" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindTime:
		return "t" + v.tm.UTC().Format(time.RFC3339Nano)
	default:
		return "0"
	}
}

// Key encodes the cells of r without loss. Cells are length-prefixed, so no
// content can collide with the separator.
func (r Row) Key() string {
	var b strings.Builder
	for _, v := range r {
		k := v.Key()
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}

// Compare orders values: nulls first, then by kind, then by content.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindString:
		switch {
		case a.str < b.str:
			return -1
		case a.str > b.str:
			return 1
		}
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	case KindTime:
		return a.tm.Compare(b.tm)
	}
	return 0
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
