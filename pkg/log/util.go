package log

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// toFields converts key/value pairs to zap fields. zap.Field and error
// arguments stand alone. An unpaired trailing value is logged as "arg#N"
// and a pair with a non-string key as "invalid_key_N".
func toFields(args ...any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2+1)
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case zap.Field:
			fields = append(fields, v)
			continue
		case error:
			fields = append(fields, zap.Error(v))
			continue
		}

		if i+1 == len(args) {
			fields = append(fields, zap.Any(fmt.Sprintf("arg#%d", i), args[i]))
			break
		}

		key, val := args[i], args[i+1]
		i++

		name, ok := key.(string)
		if !ok {
			fields = append(fields, zap.Any(fmt.Sprintf("invalid_key_%d", (i+1)/2), map[string]any{"key": key, "value": val}))
			continue
		}
		fields = append(fields, typedField(name, val))
	}
	return fields
}

// typedField picks a zap encoder for the value types the agent logs most:
// delays, timestamps, errors, intents and statuses (Stringers or string
// kinds), and capability lists.
func typedField(key string, val any) zap.Field {
	switch v := val.(type) {
	case time.Duration:
		return zap.Duration(key, v)
	case time.Time:
		return zap.Time(key, v)
	case error:
		return zap.NamedError(key, v)
	case []string:
		return zap.Strings(key, v)
	case []byte:
		return zap.ByteString(key, v)
	case fmt.Stringer:
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, v)
	}
}
