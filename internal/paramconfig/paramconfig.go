// Package paramconfig materializes the engine's textual parameter map
// (the same map models.Params wraps) into a typed struct, the library-
// boundary counterpart to the teacher's config.ParseFlags: flags/env there,
// a string->string map passed across the FFI boundary here. Unknown keys
// are logged and ignored rather than rejected, since a host may pass a
// superset of parameters meant for several different operations at once.
package paramconfig

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	"github.com/anofox/tsforge/internal/obslog"
	"github.com/anofox/tsforge/pkg/engerr"
)

// Decode fills dst (a pointer to a struct) from params using each field's
// `param:"name"` tag. Supported field types are string, int, float64, and
// bool. A field without a tag is skipped. Malformed values return
// engerr.InvalidArgument naming the offending key.
func Decode(params map[string]string, dst any, logger *slog.Logger) error {
	const op = "paramconfig.Decode"
	logger = obslog.FromOrDefault(logger)

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return engerr.New(engerr.Internal, op, "dst must be a pointer to a struct")
	}
	elem := v.Elem()
	t := elem.Type()

	known := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("param")
		if tag == "" {
			continue
		}
		known[tag] = true
		raw, ok := params[tag]
		if !ok {
			continue
		}
		fv := elem.Field(i)
		if err := setField(fv, raw); err != nil {
			return engerr.Wrap(engerr.InvalidArgument, op, fmt.Sprintf("parameter %q", tag), err)
		}
	}

	for key := range params {
		if !known[key] {
			logger.Warn("ignoring unknown parameter", "key", key)
		}
	}
	return nil
}

func setField(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
	return nil
}
