// Package pipeline defines the declarative aggregation stages that storage
// backends execute server-side. Stages are plain tagged values so report
// definitions stay storage-agnostic and statically checkable; each Store
// implementation translates or evaluates them itself.
package pipeline

import "github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"

// Doc is one record produced by an aggregation, keyed by output field name.
type Doc map[string]any

// Pipeline is an ordered list of stages applied to a collection.
type Pipeline []Stage

// Stage is one declarative aggregation step.
type Stage interface {
	stage()
}

// Predicate is a single field condition inside a Match stage.
type Predicate interface {
	predicate()
}

// Eq matches documents whose field equals Value.
type Eq struct {
	Field string
	Value any
}

// Ne matches documents whose field differs from Value.
type Ne struct {
	Field string
	Value any
}

// Lt matches documents whose field is strictly less than Value.
// Time values compare chronologically.
type Lt struct {
	Field string
	Value any
}

func (Eq) predicate() {}
func (Ne) predicate() {}
func (Lt) predicate() {}

// Match keeps only documents satisfying all predicates.
type Match struct {
	Predicates []Predicate
}

// Group buckets documents by the By field and emits one document per bucket:
// {_id: <key>, <CountAs>: <bucket size>}. A missing or null key buckets under
// the empty string.
type Group struct {
	By      string
	CountAs string
}

// Lookup joins documents from another collection. For each input document the
// joined matches are attached as an array under As. A local value that is
// itself an array joins on set membership.
type Lookup struct {
	From         domain.Collection
	LocalField   string
	ForeignField string
	As           string
}

// Unwind flattens the array at Path into one output document per element.
// Documents whose array is empty or absent are dropped.
type Unwind struct {
	Path string
}

// Project reshapes documents to exactly the listed fields.
type Project struct {
	Fields []Field
}

// Field is one projected output field. From names the source path (dotted for
// fields of joined documents) and defaults to As when empty. Size emits the
// length of the array at From instead of its value.
type Field struct {
	As   string
	From string
	Size bool
}

// Sort orders documents ascending by the byte-wise string form of the By
// field. Every Group in this module is followed by a Sort on the group key so
// report output is reproducible regardless of backend iteration order.
type Sort struct {
	By string
}

func (Match) stage()   {}
func (Group) stage()   {}
func (Lookup) stage()  {}
func (Unwind) stage()  {}
func (Project) stage() {}
func (Sort) stage()    {}

// Source returns the field a projected output reads from.
func (f Field) Source() string {
	if f.From != "" {
		return f.From
	}
	return f.As
}
