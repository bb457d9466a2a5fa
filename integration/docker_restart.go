//go:build integration

package integration

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func restartContainer(t *testing.T, ctx context.Context, service string) {
	t.Helper()

	out, err := exec.CommandContext(ctx, "docker", "compose", "restart", service).CombinedOutput()
	require.NoError(t, err, "docker compose restart %s:\n%s", service, out)
}
