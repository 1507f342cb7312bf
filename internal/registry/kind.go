package registry

import (
	"reflect"
)

// Kind identifies the dynamic Go type of a model or item.
type Kind struct {
	t reflect.Type
}

// KindOf returns the kind of v's dynamic type.
func KindOf(v any) Kind {
	return Kind{t: reflect.TypeOf(v)}
}

// KindFor returns the kind of T.
func KindFor[T any]() Kind {
	return Kind{t: reflect.TypeFor[T]()}
}

// IsZero reports whether k was derived from a nil value.
func (k Kind) IsZero() bool {
	return k.t == nil
}

func (k Kind) String() string {
	if k.t == nil {
		return "<nil>"
	}
	return k.t.String()
}
