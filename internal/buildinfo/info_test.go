package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "dev", String())

	Version, Commit, Date = "1.2.0", "abc123", "2025-03-10"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })
	assert.Equal(t, "1.2.0 (commit: abc123, built: 2025-03-10)", String())
}
