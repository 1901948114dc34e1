package ir

import (
	"fmt"
	"strings"
)

// FieldType is the semantic type of a dataset field as named in schema
// descriptor files.
type FieldType string

const (
	FieldText   FieldType = "TEXT"
	FieldShort  FieldType = "SHORT"
	FieldLong   FieldType = "LONG"
	FieldFloat  FieldType = "FLOAT"
	FieldDouble FieldType = "DOUBLE"
	FieldDate   FieldType = "DATE"

	// FieldGeometry marks the opaque SHAPE column of point and line tables.
	// It never appears in descriptor files.
	FieldGeometry FieldType = "GEOMETRY"
)

// ShapeField is the column holding opaque geometry.
const ShapeField = "SHAPE"

// ParseFieldType accepts the descriptor spelling of a field type.
// LONG/INTEGER and FLOAT/SINGLE aliases used by legacy exports are accepted.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEXT", "STRING":
		return FieldText, nil
	case "SHORT", "SMALLINTEGER":
		return FieldShort, nil
	case "LONG", "INTEGER":
		return FieldLong, nil
	case "FLOAT", "SINGLE":
		return FieldFloat, nil
	case "DOUBLE":
		return FieldDouble, nil
	case "DATE":
		return FieldDate, nil
	default:
		return "", fmt.Errorf("unknown field type %q", s)
	}
}

// IsInteger reports whether values of this type are stored as Int.
func (t FieldType) IsInteger() bool {
	return t == FieldShort || t == FieldLong
}

// IsFloat reports whether values of this type are stored as Float.
func (t FieldType) IsFloat() bool {
	return t == FieldFloat || t == FieldDouble
}

// FieldDescriptor describes one field of a target table.
// Length, Default and Domain are optional; nil means absent in the
// descriptor file (not an empty string).
type FieldDescriptor struct {
	Name    string    `json:"name" yaml:"name"`
	Type    FieldType `json:"type" yaml:"type"`
	Alias   string    `json:"alias,omitempty" yaml:"alias,omitempty"`
	Length  *int      `json:"length,omitempty" yaml:"length,omitempty"`
	Default *string   `json:"default,omitempty" yaml:"default,omitempty"`
	Domain  *string   `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// DefaultValue returns the typed default, or Null when none is declared.
func (f FieldDescriptor) DefaultValue() (Value, error) {
	if f.Default == nil {
		return Null{}, nil
	}
	return Parse(*f.Default, f.Type)
}

// DomainName returns the referenced domain or "".
func (f FieldDescriptor) DomainName() string {
	if f.Domain == nil {
		return ""
	}
	return *f.Domain
}

// GeometryKind says whether a table carries geometry.
type GeometryKind string

const (
	GeometryPoint    GeometryKind = "POINT"
	GeometryPolyline GeometryKind = "POLYLINE"
	GeometryNone     GeometryKind = "NONE"
)

// ParseGeometryKind accepts POINT, POLYLINE (or LINE) and NONE (or empty).
func ParseGeometryKind(s string) (GeometryKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "POINT":
		return GeometryPoint, nil
	case "POLYLINE", "LINE":
		return GeometryPolyline, nil
	case "", "NONE", "TABLE":
		return GeometryNone, nil
	default:
		return "", fmt.Errorf("unknown geometry kind %q", s)
	}
}

// HasShape reports whether tables of this kind carry a SHAPE column.
func (g GeometryKind) HasShape() bool {
	return g == GeometryPoint || g == GeometryPolyline
}

// DomainKind distinguishes coded-value domains from range domains.
type DomainKind string

const (
	DomainCoded DomainKind = "CODED"
	DomainRange DomainKind = "RANGE"
)

// MergePolicy is carried with the domain definition for the store.
// DUPLICATE permits repeated descriptions across codes.
type MergePolicy string

const (
	PolicyDefault   MergePolicy = "DEFAULT"
	PolicyDuplicate MergePolicy = "DUPLICATE"
)

// DomainSpec identifies a domain to be created in the dataset store.
type DomainSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	BaseType    FieldType   `json:"base_type"`
	Kind        DomainKind  `json:"kind"`
	Policy      MergePolicy `json:"policy"`
}

// CodedValue is one code/description pair of a coded domain.
type CodedValue struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Relationship declares a referential link between two tables.
// The store records it; enforcement belongs to the dataset engine.
type Relationship struct {
	Name        string `json:"name" yaml:"name"`
	Origin      string `json:"origin" yaml:"origin"`
	Destination string `json:"destination" yaml:"destination"`
	Kind        string `json:"kind" yaml:"kind"`               // SIMPLE | COMPOSITE
	Cardinality string `json:"cardinality" yaml:"cardinality"` // ONE_TO_MANY
	Direction   string `json:"direction" yaml:"direction"`     // NONE | FORWARD
	OriginKey   string `json:"origin_key" yaml:"origin_key"`
	ForeignKey  string `json:"foreign_key" yaml:"foreign_key"`
}
