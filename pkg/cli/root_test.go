package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	want := []string{"write", "read", "search", "list", "delete", "prune", "digest", "stats", "browse", "config"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, registered[name], "command %q should be registered", name)
	}
}

func TestDestructiveCommandsHaveConfirmFlag(t *testing.T) {
	for _, name := range []string{"write", "delete", "prune"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.NotNil(t, cmd.Flags().Lookup("confirm"), "%q should expose --confirm", name)
	}
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "json", "dir", "lock-backend", "lock-timeout", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "persistent flag %q", name)
	}
}
