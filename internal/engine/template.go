package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var mergeFieldPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ResolveTemplate substitutes every {{key}} merge field with the stringified
// context value. Unresolved keys are left verbatim so a misauthored template
// is visible in the output instead of silently blank. There is no recursive
// substitution: values containing {{...}} come out as-is.
func ResolveTemplate(template string, context map[string]any) string {
	if template == "" {
		return ""
	}
	return mergeFieldPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := mergeFieldPattern.FindStringSubmatch(token)[1]
		value, ok := context[key]
		if !ok {
			return token
		}
		return stringify(value)
	})
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", val)
	}
}
