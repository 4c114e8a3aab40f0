package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapField wraps a zap.Field and implements the Field interface
type ZapField struct {
	zapField zap.Field
}

// Key returns the field's key
func (f ZapField) Key() string {
	return f.zapField.Key
}

// Value returns the field's value
func (f ZapField) Value() any {
	enc := zapcore.NewMapObjectEncoder()
	f.zapField.AddTo(enc)
	return enc.Fields[f.zapField.Key]
}

// ZapField returns the underlying zap.Field
func (f ZapField) ZapField() zap.Field {
	return f.zapField
}

// Field constructors
var (
	String = func(key, val string) Field {
		return ZapField{zap.String(key, val)}
	}

	Strings = func(key string, val []string) Field {
		return ZapField{zap.Strings(key, val)}
	}

	Int = func(key string, val int) Field {
		return ZapField{zap.Int(key, val)}
	}

	Bool = func(key string, val bool) Field {
		return ZapField{zap.Bool(key, val)}
	}

	Duration = func(key string, val time.Duration) Field {
		return ZapField{zap.Duration(key, val)}
	}

	Error = func(err error) Field {
		return ZapField{zap.Error(err)}
	}

	Any = func(key string, val any) Field {
		return ZapField{zap.Any(key, val)}
	}
)

// BeanName tags an entry with the bean being processed.
func BeanName(name string) Field {
	return String("bean", name)
}
