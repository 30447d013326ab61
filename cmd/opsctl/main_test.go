package main

import (
	"os"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearActor unsets OPSCTL_ACTOR for the test and restores it afterwards.
func clearActor(t *testing.T) {
	t.Setenv("OPSCTL_ACTOR", "")
	require.NoError(t, os.Unsetenv("OPSCTL_ACTOR"))
}

func newParser(t *testing.T, args *opsctlCLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(args, kong.Name("opsctl"))
	require.NoError(t, err)
	return parser
}

func TestOpsctlCLI_Commands(t *testing.T) {
	clearActor(t)

	var args opsctlCLI
	kctx, err := newParser(t, &args).Parse([]string{"--actor", "ops-1", "confirm-all", "2025-03-15"})
	require.NoError(t, err)
	assert.Equal(t, "confirm-all <date>", kctx.Command())
	assert.Equal(t, "ops-1", args.Actor)
	assert.Equal(t, "2025-03-15", args.ConfirmAll.Date)

	args = opsctlCLI{}
	kctx, err = newParser(t, &args).Parse([]string{"--actor", "ops-1", "actions", "--all"})
	require.NoError(t, err)
	assert.Equal(t, "actions", kctx.Command())
	assert.True(t, args.Actions.All)
	assert.Equal(t, 20, args.Actions.Limit)
}

func TestOpsctlCLI_ActorFromEnv(t *testing.T) {
	t.Setenv("OPSCTL_ACTOR", "ops-env")

	var args opsctlCLI
	kctx, err := newParser(t, &args).Parse([]string{"watch"})
	require.NoError(t, err)
	assert.Equal(t, "watch", kctx.Command())
	assert.Equal(t, "ops-env", args.Actor)
}

func TestOpsctlCLI_RequiresActor(t *testing.T) {
	clearActor(t)

	var args opsctlCLI
	_, err := newParser(t, &args).Parse([]string{"actions"})
	assert.Error(t, err)
}
