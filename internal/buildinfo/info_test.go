package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_Stamped(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "v1.2.0", "abc1234", "2024-10-01"
	assert.Equal(t, "v1.2.0 (commit: abc1234, built: 2024-10-01)", String())
}

func TestString_Unstamped(t *testing.T) {
	assert.Contains(t, String(), "(commit: none, built: unknown)")
}
