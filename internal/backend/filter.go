package backend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var placeholderPattern = regexp.MustCompile(`\{:(\w+)\}`)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Filter binds params into a filter expression. Every {:name} placeholder
// is replaced by a literal of the matching param; unknown placeholders are
// left untouched.
//
//	Filter("author = {:author}", map[string]any{"author": name})
func Filter(expr string, params map[string]any) string {
	if len(params) == 0 {
		return expr
	}
	return placeholderPattern.ReplaceAllStringFunc(expr, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok {
			return m
		}
		return literal(v)
	})
}

func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return quote(val.UTC().Format("2006-01-02 15:04:05.000Z"))
	case fmt.Stringer:
		return quote(val.String())
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return quote(fmt.Sprint(val))
		}
		return quote(string(data))
	}
}

func quote(s string) string {
	return "'" + literalEscaper.Replace(s) + "'"
}
