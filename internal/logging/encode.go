package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// consoleTimeLayout is local wall time with milliseconds.
const consoleTimeLayout = "2006-01-02 15:04:05.000"

// appendValue writes v in console form, quoting strings that would not
// survive a naive key=value split.
func appendValue(buf *bytes.Buffer, v slog.Value) {
	v = v.Resolve()
	var scratch [64]byte
	switch v.Kind() {
	case slog.KindBool:
		buf.Write(strconv.AppendBool(scratch[:0], v.Bool()))
	case slog.KindInt64:
		buf.Write(strconv.AppendInt(scratch[:0], v.Int64(), 10))
	case slog.KindUint64:
		buf.Write(strconv.AppendUint(scratch[:0], v.Uint64(), 10))
	case slog.KindFloat64:
		buf.Write(strconv.AppendFloat(scratch[:0], v.Float64(), 'g', -1, 64))
	case slog.KindDuration:
		buf.WriteString(v.Duration().String())
	case slog.KindTime:
		buf.WriteString(v.Time().Local().Format(consoleTimeLayout))
	default:
		s := plainString(v)
		if isBareWord(s) {
			buf.WriteString(s)
		} else {
			buf.Write(strconv.AppendQuote(scratch[:0], s))
		}
	}
}

// plainString renders v without quoting; errors use their message.
func plainString(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

func isBareWord(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"' || r == 0x7f
	})
}

// jsonKeys renames slog's built-in keys for the JSON output.
var jsonKeys = map[string]string{
	slog.TimeKey:   "ts",
	slog.LevelKey:  "level",
	slog.SourceKey: "caller",
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	name, builtin := jsonKeys[attr.Key]
	if len(groups) > 0 || !builtin {
		return attr
	}
	switch value := attr.Value.Any().(type) {
	case time.Time:
		attr.Value = slog.StringValue(value.UTC().Format(time.RFC3339Nano))
	case slog.Level:
		attr.Value = slog.StringValue(strings.ToLower(value.String()))
	case *slog.Source:
		if value != nil {
			attr.Value = slog.StringValue(filepath.Base(value.File) + ":" + strconv.Itoa(value.Line))
		}
	}
	attr.Key = name
	return attr
}

func newJSONHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})
}
