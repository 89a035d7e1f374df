package domain

import "fmt"

// ParsePolicy decides what happens to a row holding an unparseable value.
type ParsePolicy string

const (
	ParsePolicyAbort ParsePolicy = "abort"
	ParsePolicyDrop  ParsePolicy = "drop"
)

func ParseParsePolicy(s string) (ParsePolicy, error) {
	switch p := ParsePolicy(s); p {
	case ParsePolicyAbort, ParsePolicyDrop:
		return p, nil
	case "":
		return ParsePolicyAbort, nil
	default:
		return "", ConfigErr("unknown parse error policy", map[string]any{"policy": s})
	}
}

// FillMethod is the group statistic used to impute missing numbers.
type FillMethod string

const (
	FillMean   FillMethod = "mean"
	FillMedian FillMethod = "median"
)

// Bins are the fixed cut points and labels of a bucketed column.
type Bins struct {
	Edges  []float64
	Labels []string
}

func (b Bins) String() string {
	return fmt.Sprintf("%v -> %v", b.Edges, b.Labels)
}
