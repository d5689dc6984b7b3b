package bridge

import (
	"fmt"

	"github.com/spachava753/contactbridge/contacts"
)

// args reads typed call arguments and keeps the first type error.
type args struct {
	m   map[string]any
	err error
}

func (a *args) fail(key string, want string, got any) {
	if a.err == nil {
		a.err = &contacts.Error{
			Code:    contacts.ErrorCodeMalformedInput,
			Message: fmt.Sprintf("argument %s: expected %s, got %T", key, want, got),
		}
	}
}

func (a *args) string(key string) string {
	switch v := a.m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		a.fail(key, "string", v)
		return ""
	}
}

func (a *args) int(key string, fallback int) int {
	switch v := a.m[key].(type) {
	case nil:
		return fallback
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
		a.fail(key, "integer", v)
	default:
		a.fail(key, "integer", v)
	}
	return fallback
}

func (a *args) bool(key string, fallback bool) bool {
	switch v := a.m[key].(type) {
	case nil:
		return fallback
	case bool:
		return v
	default:
		a.fail(key, "bool", v)
		return fallback
	}
}

func (a *args) object(key string) map[string]any {
	switch v := a.m[key].(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	default:
		a.fail(key, "object", v)
		return nil
	}
}
