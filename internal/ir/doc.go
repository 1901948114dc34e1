// Package ir provides the value and schema types shared by every stage of
// the network migration.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the value model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is sealed: Null, String, Int, Float, Bytes
//   - Absent descriptor attributes are nil pointers, never empty strings
//   - Geometry is opaque Bytes in the SHAPE column and is never interpreted
//   - Digests use canonical JSON with NFC-normalized strings
package ir
