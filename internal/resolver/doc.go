// Package resolver migrates project coding records and resolves link
// replacements.
//
// Legacy projects describe a link replacement as an ACTION_CODE "2" row
// naming the replaced link (ABB) and the node pair of the replacing link
// (REP_ANODE, REP_BNODE). In the current schema a replacement is a
// modification: the replaced link gets an ACTION_CODE "4" record whose
// attributes are copied from the baseline link at that node pair.
//
// All lookups are explicit values built by the caller. Nothing here
// touches a store; the pipeline reads inputs and writes the results.
package resolver
