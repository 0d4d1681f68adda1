package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerFunc(t *testing.T) {
	var gotName string
	var gotArgs []string
	r := RunnerFunc(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("ok"), nil
	})

	out, err := r.Run(context.Background(), "git", "log", "--oneline")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))
	assert.Equal(t, "git", gotName)
	assert.Equal(t, []string{"log", "--oneline"}, gotArgs)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), "xctools-definitely-not-a-binary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found on PATH")
}

func TestExecRunner_ReturnsStdout(t *testing.T) {
	r := NewExecRunner()

	out, err := r.Run(context.Background(), "sh", "-c", "printf hello; printf noise >&2")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestExecRunner_PropagatesFailure(t *testing.T) {
	r := &ExecRunner{Dir: t.TempDir()}

	_, err := r.Run(context.Background(), "sh", "-c", "echo fatal: not a git repository >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal: not a git repository")
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestExecRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecRunner().Run(ctx, "sh", "-c", "sleep 5")
	require.Error(t, err)
}
