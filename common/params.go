package common

import (
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// SetField copies pp[key] into target, or defaultVal when the key is absent or
// zero. TOML integers arrive as int64 and are converted for int targets.
func SetField[T string | int | bool](key string, target *T, pp map[string]interface{}, defaultVal T) error {
	v, ok := pp[key]
	if !ok || v == nil || reflect.ValueOf(v).IsZero() {
		zap.L().Debug(fmt.Sprintf("Set default value for %s: %v", key, defaultVal))
		*target = defaultVal
		return nil
	}
	switch t := any(target).(type) {
	case *int:
		switch n := v.(type) {
		case int64:
			*t = int(n)
			return nil
		case int:
			*t = n
			return nil
		}
	default:
		if tv, ok := v.(T); ok {
			*target = tv
			return nil
		}
	}
	return fmt.Errorf("%s must be a %T, got %T", key, defaultVal, v)
}

func SetDurationField(key string, target *time.Duration, pp map[string]interface{}, defaultVal time.Duration) error {
	v, ok := pp[key]
	if !ok || v == nil || reflect.ValueOf(v).IsZero() {
		zap.L().Debug(fmt.Sprintf("Set default value for %s: %v", key, defaultVal))
		*target = defaultVal
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s must be a duration string, got %T", key, v)
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse duration for %s/reason:%s", key, err))
		return err
	}
	*target = dur
	return nil
}
