package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

func TestListCommand(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"), pair(4, "wiki-cc-pair"))
	cfg := writeConfig(t, server.URL)

	stdout, _, err := execute(t, "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "docs-cc-pair")
	assert.Contains(t, stdout, "wiki-cc-pair")
	assert.Contains(t, stdout, "ACTIVE")

	stdout, _, err = execute(t, "list", "--config", cfg, "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data, 2)
}

func TestGetCommand_NotFound(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	_, stderr, err := execute(t, "get", "9", "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "cc pair 9 not found")
}

func TestCreateCommand(t *testing.T) {
	fs, server := newFakeServer(t)
	cfg := writeConfig(t, server.URL)

	stdout, _, err := execute(t, "create", "--config", cfg,
		"--connector-id", "10", "--credential-id", "20", "--name", "docs",
		"--access-type", "private", "--groups", "1,2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created cc pair 101 (docs-cc-pair)")

	require.Len(t, fs.pairs, 1)
	assert.Equal(t, client.AccessTypePrivate, fs.pairs[0].AccessType)
	assert.Equal(t, []int{1, 2}, fs.pairs[0].Groups)
}

func TestCreateCommand_RequiresIDs(t *testing.T) {
	_, server := newFakeServer(t)
	cfg := writeConfig(t, server.URL)

	_, _, err := execute(t, "create", "--config", cfg, "--connector-id", "10")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "create", "--config", cfg, "--connector-id", "10", "--credential-id", "20", "--access-type", "secret")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPauseAndResumeCommands(t *testing.T) {
	fs, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	_, _, err := execute(t, "pause", "3", "--config", cfg)
	require.NoError(t, err)
	_, _, err = execute(t, "resume", "3", "--config", cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"PAUSED", "ACTIVE"}, fs.statuses)
}

func TestRunOnceCommand_Wait(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	stdout, _, err := execute(t, "run-once", "3", "--wait", "--config", cfg, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"id": float64(3), "operation": "run-once", "complete": true}, resp.Data)
}

func TestPruneCommand_Wait(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	stdout, _, err := execute(t, "prune", "3", "--wait", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Completed prune for cc pair 3")
}

func TestWaitIndexing_TimesOut(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	// Never indexed, so nothing can complete
	_, stderr, err := execute(t, "wait", "indexing", "3", "--config", cfg, "--timeout", "50ms")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Error [timeout]")
}

func TestWaitSync_MissingTaskIsFatal(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	_, stderr, err := execute(t, "wait", "sync", "3", "--config", cfg, "--after", "2024-10-01T12:00:00Z")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "sync task not found")
}

func TestWaitCommand_InvalidAfter(t *testing.T) {
	_, server := newFakeServer(t)
	cfg := writeConfig(t, server.URL)

	_, _, err := execute(t, "wait", "prune", "3", "--config", cfg, "--after", "yesterday")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDeleteCommand_WaitThenVerify(t *testing.T) {
	fs, server := newFakeServer(t, pair(3, "docs-cc-pair"), pair(4, "other-cc-pair"))
	fs.pairs[1].Connector.ID = 11
	cfg := writeConfig(t, server.URL)

	stdout, _, err := execute(t, "delete", "3", "--wait", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted cc pair 3")
	assert.Equal(t, []client.DeletionAttemptRequest{{ConnectorID: 10, CredentialID: 20}}, fs.deletions)

	_, _, err = execute(t, "verify", "3", "--expect-deleted", "--config", cfg)
	require.NoError(t, err)

	_, _, err = execute(t, "wait", "deletion", "--config", cfg)
	require.NoError(t, err)
}

func TestVerifyCommand(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	args := []string{"verify", "3", "--config", cfg,
		"--name", "docs-cc-pair", "--connector-id", "10", "--credential-id", "20",
		"--access-type", "private", "--groups", "2,1"}

	stdout, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "CC pair 3 matches")

	stdout, _, err = execute(t, append(args[:len(args)-1], "1", "--format", "json")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decodeResponse(t, stdout)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMismatch, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "groups mismatch")
}

func TestUserHeaderFlag(t *testing.T) {
	fs, server := newFakeServer(t, pair(3, "docs-cc-pair"))
	cfg := writeConfig(t, server.URL)

	_, _, err := execute(t, "list", "--config", cfg, "--user-header", "X-Test-User=curator@test.com")
	require.NoError(t, err)

	require.Len(t, fs.headers, 1)
	assert.Equal(t, "curator@test.com", fs.headers[0].Get("X-Test-User"))
	assert.Empty(t, fs.headers[0].Get("Authorization"), "acting user headers replace the API key")
}

func TestConfigFlagOverrides(t *testing.T) {
	_, server := newFakeServer(t, pair(3, "docs-cc-pair"))

	// The config points nowhere useful; --api-url wins
	cfg := writeConfig(t, "http://127.0.0.1:1")
	stdout, _, err := execute(t, "get", "3", "--config", cfg, "--api-url", server.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "docs-cc-pair")

	_, _, err = execute(t, "list", "--config", "/does/not/exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
