package client

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.Set("store.path", filepath.Join(t.TempDir(), "pastestore.db"))
	viper.Set("log.level", "ERROR")
	t.Cleanup(viper.Reset)
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCaptureAndRecall(t *testing.T) {
	setupTestConfig(t)

	out, err := execute(t, NewCaptureCommand(), "", "hello", "world", "--tag", "Greeting", "-t", "demo")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = execute(t, NewCaptureCommand(), "line one\nline two", "--stdin")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = execute(t, NewRecallCommand(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "greeting,demo")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "line one line two")

	out, err = execute(t, NewRecallCommand(), "", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "hello world")
	assert.NotContains(t, out, "line one")

	_, err = execute(t, NewRecallCommand(), "", "--order", "value")
	assert.Error(t, err)
}

func TestUsePrintsValue(t *testing.T) {
	setupTestConfig(t)

	_, err := execute(t, NewCaptureCommand(), "raw\x00bytes", "--stdin")
	require.NoError(t, err)

	out, err := execute(t, NewUseCommand(), "", "1", "--print")
	require.NoError(t, err)
	assert.Equal(t, "raw\x00bytes", out)

	_, err = execute(t, NewUseCommand(), "", "nope")
	assert.Error(t, err)
}

func TestTagUntagAndReorder(t *testing.T) {
	setupTestConfig(t)

	_, err := execute(t, NewCaptureCommand(), "", "value")
	require.NoError(t, err)

	_, err = execute(t, NewTagCommand(), "", "1", "a", "b", "c")
	require.NoError(t, err)

	_, err = execute(t, NewReorderCommand(), "", "1", "c", "a", "b")
	require.NoError(t, err)

	out, err := execute(t, NewRecallCommand(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "c,a,b")

	_, err = execute(t, NewUntagCommand(), "", "1", "a")
	require.NoError(t, err)

	out, err = execute(t, NewRecallCommand(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "c,b")

	_, err = execute(t, NewReorderCommand(), "", "1", "c")
	assert.Error(t, err)
}

func TestEditAndRemove(t *testing.T) {
	setupTestConfig(t)

	_, err := execute(t, NewCaptureCommand(), "", "draft", "-t", "old")
	require.NoError(t, err)

	_, err = execute(t, NewEditCommand(), "", "1", "final", "text", "-t", "new")
	require.NoError(t, err)

	out, err := execute(t, NewRecallCommand(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "final text")
	assert.Contains(t, out, "new")

	out, err = execute(t, NewTagsCommand(), "", "ls")
	require.NoError(t, err)
	assert.NotContains(t, out, "old")

	_, err = execute(t, NewRemoveCommand(), "", "1")
	require.NoError(t, err)

	_, err = execute(t, NewRemoveCommand(), "", "1")
	assert.Error(t, err)
}

func TestMigrateCommands(t *testing.T) {
	setupTestConfig(t)

	out, err := execute(t, NewMigrateCommand(), "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "create_initial_tables")
	assert.Contains(t, out, "pending")

	out, err = execute(t, NewMigrateCommand(), "", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "version 1")

	_, err = execute(t, NewMigrateCommand(), "", "rollback")
	assert.Error(t, err, "rollback requires confirmation")

	out, err = execute(t, NewMigrateCommand(), "", "rollback", "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "version 0")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview([]byte("a\n b\t c"), 10))
	assert.Equal(t, "abcdefg...", preview([]byte("abcdefghijklmnop"), 10))
}
