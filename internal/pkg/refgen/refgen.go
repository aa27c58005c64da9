// Package refgen generates the externally meaningful identifiers of the
// ledger: transaction references, account numbers and membership numbers.
//
// Sequence-based numbers must be generated from a serialized counter
// (see repositories.SequenceRepository); transaction references carry
// random entropy and rely on a unique index plus retry for collision
// safety.
package refgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionRef returns a reference like "TXN-20260901-3FA85F64".
// The suffix is 8 uppercase hex chars drawn from a random UUID.
func TransactionRef(at time.Time) string {
	u := uuid.New()
	suffix := strings.ToUpper(fmt.Sprintf("%x", u[0:4]))
	return fmt.Sprintf("TXN-%s-%s", at.Format("20060102"), suffix)
}

// AccountNumber returns a number like "ACC-SAV-2026-000123".
func AccountNumber(typeCode string, year int, seq int64) string {
	return fmt.Sprintf("ACC-%s-%d-%06d", typeCode, year, seq)
}

// MemberNumber returns a number like "MBR-2026-00042".
func MemberNumber(year int, seq int64) string {
	return fmt.Sprintf("MBR-%d-%05d", year, seq)
}

// AccountScope returns the sequence scope for account numbers, one
// counter per type and year.
func AccountScope(typeCode string, year int) string {
	return fmt.Sprintf("account:%s:%d", typeCode, year)
}

// MemberScope returns the sequence scope for membership numbers.
func MemberScope(year int) string {
	return fmt.Sprintf("member:%d", year)
}
