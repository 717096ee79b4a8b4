package models

import "strings"

// MatchMode selects which part of a record a predicate is checked against.
type MatchMode int

const (
	// MatchField checks only the value stored under the predicate's key.
	MatchField MatchMode = iota
	// MatchRecord checks the values of all fields in the record.
	MatchRecord
)

// Predicate filters records by case-sensitive substring containment.
// An empty Value matches every record.
type Predicate struct {
	Key   string
	Value string
	Mode  MatchMode
}

// MatchAll returns a predicate that matches every record.
func MatchAll() Predicate {
	return Predicate{Mode: MatchRecord}
}

// Matches reports whether the record satisfies the predicate.
func (p Predicate) Matches(r *Record) bool {
	if p.Value == "" {
		return true
	}

	switch p.Mode {
	case MatchField:
		value, ok := r.Field(p.Key)
		return ok && strings.Contains(value, p.Value)
	case MatchRecord:
		for _, f := range r.Fields {
			if strings.Contains(f.Value, p.Value) {
				return true
			}
		}
	}

	return false
}
