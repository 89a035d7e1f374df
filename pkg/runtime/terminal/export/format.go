package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

const truncMarker = "..."

// FormatValue renders report values: integral floats without decimals, other
// floats with two.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case time.Time:
		return domain.Time(x).String()
	case domain.Value:
		return FormatCell(x)
	default:
		return fmt.Sprint(x)
	}
}

// FormatCell renders one table cell for the terminal.
func FormatCell(v domain.Value) string {
	switch v.Kind() {
	case domain.KindNull:
		return "NaN"
	case domain.KindNumber:
		return formatFloat(v.Num())
	default:
		return v.String()
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', 0, 64)
	default:
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
}

// Truncate shortens s to width runes, marking the cut.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= len(truncMarker) {
		return string(r[:width])
	}
	return string(r[:width-len(truncMarker)]) + truncMarker
}

func pad(s string, width int, right bool) string {
	n := width - len([]rune(s))
	if n <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}
