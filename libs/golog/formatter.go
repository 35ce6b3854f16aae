package golog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = "2006-01-02T15:04:05-0700"

type Formatter interface {
	Format(e *Entry) []byte
}

type FormatterFunc func(*Entry) []byte

func (f FormatterFunc) Format(e *Entry) []byte {
	return f(e)
}

func JSONFormatter() Formatter {
	return FormatterFunc(func(e *Entry) []byte {
		js := make(map[string]interface{}, len(e.Ctx)/2+4)
		for i := 0; i+1 < len(e.Ctx); i += 2 {
			k, ok := e.Ctx[i].(string)
			if !ok {
				js["_error"] = fmt.Sprintf("%+v is not a string key", e.Ctx[i])
			} else {
				js[k] = formatValue(e.Ctx[i+1])
			}
		}
		js["t"] = e.Time.Format(timeFormat)
		js["level"] = e.Lvl.String()
		js["msg"] = e.Msg
		if e.Src != "" {
			js["src"] = e.Src
		}
		b, err := json.Marshal(js)
		if err != nil {
			b, _ = json.Marshal(map[string]string{"JSONFormatterError": err.Error()})
			return append(b, '\n')
		}
		return append(b, '\n')
	})
}

func LogfmtFormatter() Formatter {
	return FormatterFunc(func(e *Entry) []byte {
		buf := &bytes.Buffer{}
		buf.WriteString("t=")
		buf.WriteString(e.Time.Format(timeFormat))
		buf.WriteString(" lvl=")
		buf.WriteString(e.Lvl.String())
		buf.WriteString(" msg=")
		buf.WriteString(quote(e.Msg))
		if e.Src != "" {
			buf.WriteString(" src=")
			buf.WriteString(quote(e.Src))
		}
		for i := 0; i+1 < len(e.Ctx); i += 2 {
			k, ok := e.Ctx[i].(string)
			if !ok {
				buf.WriteString(" _error=")
			} else {
				buf.WriteByte(' ')
				buf.WriteString(k)
				buf.WriteByte('=')
			}
			buf.WriteString(quote(formatValue(e.Ctx[i+1])))
		}
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

func formatValue(value interface{}) string {
	if value == nil {
		return "nil"
	}
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', 3, 64)
	case float64:
		return strconv.FormatFloat(v, 'f', 3, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case string:
		return v
	case time.Time:
		return v.Format(timeFormat)
	case time.Duration:
		return v.String()
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%+v", value)
	}
}

// quote only quotes when the value contains characters that would break
// logfmt parsing.
func quote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \"=\n\t") {
		return strconv.Quote(s)
	}
	return s
}
