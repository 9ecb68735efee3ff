// Package render provides default identifier quoting, literal rendering and
// filter expression rendering for the supported dialects.
package render

import (
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedLiteral is returned for values that have no SQL literal form.
var ErrUnsupportedLiteral = errors.New("unsupported literal value")

// ErrUnsupportedExpression is returned for filter expressions the renderer
// does not understand.
var ErrUnsupportedExpression = errors.New("unsupported filter expression")

// Raw is SQL text emitted verbatim, e.g. Raw("CURRENT_TIMESTAMP").
type Raw string

// Expression is a filter expression that renders itself.
type Expression interface {
	SQL() string
}

// Style selects the quoting and escaping rules of a dialect.
type Style struct {
	// QuoteChar wraps identifiers: '"' for ANSI, '`' for MySQL.
	QuoteChar byte

	// BackslashEscapes doubles backslashes in string literals.
	BackslashEscapes bool

	// BooleanAsInt renders true/false as 1/0.
	BooleanAsInt bool
}

var (
	ANSI  = Style{QuoteChar: '"'}
	MySQL = Style{QuoteChar: '`', BackslashEscapes: true, BooleanAsInt: true}
)

// Renderer implements core.Renderer for a Style.
type Renderer struct {
	style Style
}

// New creates a renderer for the given style.
func New(style Style) *Renderer {
	return &Renderer{style: style}
}

// ForDialect returns the renderer matching a dialect name.
func ForDialect(name string) *Renderer {
	if name == "mysql" {
		return New(MySQL)
	}
	return New(ANSI)
}

// QuoteIdentifier wraps name in the style's quote character, doubling any
// embedded quote characters.
func (r *Renderer) QuoteIdentifier(name string) string {
	q := string(r.style.QuoteChar)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// Literal renders value as a SQL literal.
func (r *Renderer) Literal(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case Raw:
		return string(v), nil
	case string:
		return r.quoteString(v), nil
	case []byte:
		return "X'" + hex.EncodeToString(v) + "'", nil
	case bool:
		return r.boolean(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return r.quoteString(v.Format("2006-01-02 15:04:05.999999")), nil
	case fmt.Stringer:
		return r.quoteString(v.String()), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return r.list(rv)
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedLiteral, value)
}

// RenderFilterExpression renders a CHECK or partial-index predicate.
// Plain strings and Raw values are taken as SQL text.
func (r *Renderer) RenderFilterExpression(expr any) (string, error) {
	switch e := expr.(type) {
	case string:
		return e, nil
	case Raw:
		return string(e), nil
	case Expression:
		return e.SQL(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedExpression, expr)
	}
}

func (r *Renderer) list(rv reflect.Value) (string, error) {
	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		lit, err := r.Literal(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		parts = append(parts, lit)
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func (r *Renderer) quoteString(s string) string {
	if r.style.BackslashEscapes {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (r *Renderer) boolean(v bool) string {
	switch {
	case r.style.BooleanAsInt && v:
		return "1"
	case r.style.BooleanAsInt:
		return "0"
	case v:
		return "TRUE"
	default:
		return "FALSE"
	}
}
