package refgen

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionRef_Format(t *testing.T) {
	at := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	ref := TransactionRef(at)
	assert.Regexp(t, regexp.MustCompile(`^TXN-20260901-[0-9A-F]{8}$`), ref)
}

func TestTransactionRef_Entropy(t *testing.T) {
	at := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := TransactionRef(at)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestAccountNumber(t *testing.T) {
	assert.Equal(t, "ACC-SAV-2026-000123", AccountNumber("SAV", 2026, 123))
	assert.Equal(t, "ACC-SHR-2026-000001", AccountNumber("SHR", 2026, 1))
}

func TestMemberNumber(t *testing.T) {
	assert.Equal(t, "MBR-2026-00042", MemberNumber(2026, 42))
}

func TestScopes(t *testing.T) {
	assert.Equal(t, "account:SAV:2026", AccountScope("SAV", 2026))
	assert.Equal(t, "member:2026", MemberScope(2026))
}
