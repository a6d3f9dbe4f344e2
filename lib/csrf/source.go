package csrf

import "strings"

// Source is a classified token candidate. The set of variants is closed:
// Literal, Getter and Properties.
type Source interface {
	token() (string, error)
}

// Literal is a candidate that is already a string.
type Literal string

func (l Literal) token() (string, error) { return string(l), nil }

// TokenGetter is implemented by attribute values that expose the token
// through a method, such as a framework CSRF token object.
type TokenGetter interface {
	GetToken() (string, error)
}

// Getter is a candidate whose token is obtained from a method call.
type Getter struct{ TokenGetter }

func (g Getter) token() (string, error) { return g.GetToken() }

// ValueGetter is implemented by attribute values that wrap the token as a
// generic value.
type ValueGetter interface {
	GetValue() (any, error)
}

// propertyNames are checked in order on property-bearing candidates.
var propertyNames = []string{"token", "value", "csrfToken"}

// Properties is a candidate carrying the token under one of the known
// property names, or behind a GetValue method.
type Properties struct {
	Fields map[string]any
	Value  ValueGetter
}

func (p Properties) token() (string, error) {
	for _, name := range propertyNames {
		if s, ok := p.Fields[name].(string); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	if p.Value != nil {
		v, err := p.Value.GetValue()
		if err != nil {
			return "", err
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return "", nil
}

// Classify maps a raw attribute value onto a Source variant. It reports
// false for nil and for values of any other shape.
func Classify(v any) (Source, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		return Literal(val), true
	case *string:
		if val == nil {
			return nil, false
		}
		return Literal(*val), true
	case TokenGetter:
		return Getter{val}, true
	case map[string]any:
		return Properties{Fields: val}, true
	case map[string]string:
		fields := make(map[string]any, len(val))
		for k, s := range val {
			fields[k] = s
		}
		return Properties{Fields: fields}, true
	case ValueGetter:
		return Properties{Value: val}, true
	default:
		return nil, false
	}
}

// Normalize trims s and reports whether anything is left.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
