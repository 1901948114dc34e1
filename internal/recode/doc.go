// Package recode translates legacy link and project attributes into the
// current encodings.
//
// Every rule is a pure function of its inputs. Side lookups built from the
// legacy link table (the link index, truck restrictions and clearances)
// are constructed once, before the recoded link table is written, and are
// read-only afterwards.
//
// Code sets that the legacy data treats as closed (modes, action codes,
// parking restrictions) are parsed into tagged values with an explicit
// unrecognized variant. Raw() always returns the legacy text.
package recode
