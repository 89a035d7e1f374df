package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	CodeFileError   = "FileError"
	CodeParseError  = "ParseError"
	CodeDataError   = "DataError"
	CodeConfigError = "ConfigError"
)

// Err is a coded error. Data carries the values needed to diagnose it; an
// error stored under the "error" key is exposed through Unwrap.
type Err struct {
	Code  string
	Title string
	Data  map[string]any
}

func (e Err) Error() string {
	fields := []string{
		e.Code + ": " + e.Title,
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := e.Data[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		fields = append(fields, fmt.Sprintf("%s = %+v", k, v))
	}

	return strings.Join(fields, "; ")
}

func (e Err) Unwrap() error {
	err, _ := e.Data["error"].(error)
	return err
}

// ErrIs reports whether any error in err's chain is an Err with the given code.
func ErrIs(err error, code string) bool {
	for err != nil {
		var e Err
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Unwrap()
	}
	return false
}

func FileErr(title string, data map[string]any) error {
	return Err{Code: CodeFileError, Title: title, Data: data}
}

func ParseErr(title string, data map[string]any) error {
	return Err{Code: CodeParseError, Title: title, Data: data}
}

func DataErr(title string, data map[string]any) error {
	return Err{Code: CodeDataError, Title: title, Data: data}
}

func ConfigErr(title string, data map[string]any) error {
	return Err{Code: CodeConfigError, Title: title, Data: data}
}
