package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rzpsarthak13/schema-forge/internal/core"
)

// defaultVarcharSize is applied to varchar columns declared without a size.
const defaultVarcharSize = 255

// baseLiterals maps canonical types to their generic SQL literal.
// Types missing from this map are rendered verbatim.
var baseLiterals = map[core.Type]string{
	core.TypeInteger:  "integer",
	core.TypeBigint:   "bigint",
	core.TypeString:   "varchar",
	core.TypeVarchar:  "varchar",
	core.TypeText:     "text",
	core.TypeDate:     "date",
	core.TypeDateTime: "timestamp",
	core.TypeTime:     "time",
	core.TypeBoolean:  "boolean",
	core.TypeFloat:    "real",
	core.TypeDouble:   "double precision",
	core.TypeDecimal:  "numeric",
	core.TypeBlob:     "blob",
}

// LiteralRenderer renders values as SQL literals.
type LiteralRenderer interface {
	Literal(value any) (string, error)
}

// inboundRule maps a reported database type to a canonical type.
type inboundRule struct {
	pattern *regexp.Regexp
	resolve func(tm *TypeMapper) core.Type
}

func fixed(t core.Type) func(*TypeMapper) core.Type {
	return func(*TypeMapper) core.Type { return t }
}

// inboundRules are evaluated in order; specific patterns precede general ones.
var inboundRules = []inboundRule{
	{regexp.MustCompile(`^tinyint`), func(tm *TypeMapper) core.Type {
		if tm.convertTinyintToBool {
			return core.TypeBoolean
		}
		return core.TypeInteger
	}},
	{regexp.MustCompile(`^(int(eger)?|bigint|smallint)(\(\d+\))?( unsigned)?$`), fixed(core.TypeInteger)},
	{regexp.MustCompile(`^(character( varying)?|varchar|text)(\(\d+\))?$`), fixed(core.TypeString)},
	{regexp.MustCompile(`^date$`), fixed(core.TypeDate)},
	{regexp.MustCompile(`^(datetime|timestamp( with(out)? time zone)?)$`), fixed(core.TypeDateTime)},
	{regexp.MustCompile(`^time( with(out)? time zone)?$`), fixed(core.TypeTime)},
	{regexp.MustCompile(`^boolean$`), fixed(core.TypeBoolean)},
	{regexp.MustCompile(`^(real|float|double( precision)?)$`), fixed(core.TypeFloat)},
	{regexp.MustCompile(`^(numeric|decimal|money)(\(\d+(,\s*\d+)?\))?$`), fixed(core.TypeDecimal)},
	{regexp.MustCompile(`^bytea$`), fixed(core.TypeBlob)},
}

// TypeMapper handles mapping between canonical column types and the type
// strings of a SQL dialect, in both directions.
type TypeMapper struct {
	overrides            map[core.Type]string
	convertTinyintToBool bool
}

// Option configures a TypeMapper.
type Option func(*TypeMapper)

// WithOverrides replaces the literal of selected canonical types.
func WithOverrides(overrides map[core.Type]string) Option {
	return func(tm *TypeMapper) {
		for t, lit := range overrides {
			tm.overrides[t] = lit
		}
	}
}

// WithTinyintAsBool makes tinyint columns map to boolean instead of integer.
func WithTinyintAsBool(enabled bool) Option {
	return func(tm *TypeMapper) {
		tm.convertTinyintToBool = enabled
	}
}

// NewTypeMapper creates a new type mapper.
func NewTypeMapper(opts ...Option) *TypeMapper {
	tm := &TypeMapper{overrides: make(map[core.Type]string)}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// BaseLiteral returns the bare type literal for t, without size or modifiers.
func (tm *TypeMapper) BaseLiteral(t core.Type) string {
	if lit, ok := tm.overrides[t]; ok {
		return lit
	}
	if lit, ok := baseLiterals[t]; ok {
		return lit
	}
	// Extension or dialect-specific types pass through as written.
	return string(t)
}

// TypeLiteral renders the full type literal of spec, e.g. "varchar(255)" or
// "integer UNSIGNED". Element lists are rendered through r.
func (tm *TypeMapper) TypeLiteral(spec core.TypeSpec, r LiteralRenderer) (string, error) {
	base := tm.BaseLiteral(spec.Type)

	size := spec.Size
	if size == nil && len(spec.Elements) == 0 && base == "varchar" {
		n := defaultVarcharSize
		size = &n
	}

	var b strings.Builder
	b.WriteString(base)
	switch {
	case len(spec.Elements) > 0:
		elems, err := r.Literal(spec.Elements)
		if err != nil {
			return "", err
		}
		b.WriteString(elems)
	case size != nil:
		fmt.Fprintf(&b, "(%d)", *size)
	}
	if spec.Unsigned {
		b.WriteString(" UNSIGNED")
	}
	return b.String(), nil
}

// CanonicalType converts a database-reported type string to a canonical
// type. The second return value is false when no rule matches.
func (tm *TypeMapper) CanonicalType(dbType string) (core.Type, bool) {
	normalized := strings.ToLower(strings.TrimSpace(dbType))
	for _, rule := range inboundRules {
		if rule.pattern.MatchString(normalized) {
			return rule.resolve(tm), true
		}
	}
	return "", false
}

// Family returns the type CanonicalType reports for columns declared as t.
// Width variants collapse: bigint to integer, varchar and text to string,
// double to float. Unknown types are returned unchanged.
func (tm *TypeMapper) Family(t core.Type) core.Type {
	switch t {
	case core.TypeBigint:
		return core.TypeInteger
	case core.TypeVarchar, core.TypeText:
		return core.TypeString
	case core.TypeDouble:
		return core.TypeFloat
	}
	return t
}
