package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// Domain prefix for table digests.
// Version suffix enables future algorithm migration.
const DomainTableDigest = "netmigrate/table/v1"

// TableDigest accumulates a content digest over the rows of one table in
// the order they are fed. Rows are canonically marshaled and separated by
// a null byte so that row boundaries cannot shift.
//
// Format: SHA256(domain + 0x00 + row1 + 0x00 + row2 + 0x00 ...)
type TableDigest struct {
	h    hash.Hash
	rows int
}

// NewTableDigest starts an empty digest.
func NewTableDigest() *TableDigest {
	h := sha256.New()
	h.Write([]byte(DomainTableDigest))
	h.Write([]byte{0x00})
	return &TableDigest{h: h}
}

// Add feeds one row into the digest.
func (d *TableDigest) Add(r Row) error {
	data, err := MarshalCanonicalRow(r)
	if err != nil {
		return fmt.Errorf("TableDigest: failed to marshal row %d: %w", d.rows, err)
	}
	d.h.Write(data)
	d.h.Write([]byte{0x00})
	d.rows++
	return nil
}

// Rows returns the number of rows fed so far.
func (d *TableDigest) Rows() int {
	return d.rows
}

// Sum returns the hex-encoded digest.
func (d *TableDigest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
