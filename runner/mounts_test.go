package runner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMounts(t *testing.T) {
	mounts, err := ParseMounts([]string{
		"sol.py:/src/sol.py",
		"data:/data:ro",
	})
	require.NoError(t, err)
	require.Equal(t, Mount{Host: "sol.py", Container: "/src/sol.py"}, mounts[0])
	require.Equal(t, Mount{Host: "data", Container: "/data", Mode: "ro"}, mounts[1])
}

func TestParseMountsRejectsBadSyntax(t *testing.T) {
	for _, bad := range []string{"justone", "a:b:c:d", ":missing", "missing:"} {
		_, err := ParseMounts([]string{bad})
		require.Error(t, err, "mount %q", bad)
	}
}

func TestResolveLocalCmdSubstitutesContainerPaths(t *testing.T) {
	dir := t.TempDir()
	mounts, err := ParseMounts([]string{"sol.py:/src/sol.py"})
	require.NoError(t, err)

	resolved := resolveLocalCmd([]string{"python3", "/src/sol.py", "-v"}, mounts, dir)
	require.Equal(t, "python3", resolved[0])
	require.Equal(t, filepath.Join(dir, "sol.py"), resolved[1])
	require.Equal(t, "-v", resolved[2])
}

func TestDockerBindResolvesRelativeHost(t *testing.T) {
	dir := t.TempDir()
	m := Mount{Host: "sol.py", Container: "/src/sol.py", Mode: "ro"}
	require.Equal(t, filepath.Join(dir, "sol.py")+":/src/sol.py:ro", m.dockerBind(dir))
}

func TestCapWriterFlagsOverflow(t *testing.T) {
	w := &capWriter{limit: 4}
	n, err := w.Write([]byte("abcdef"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.True(t, w.exceeded)
	require.Equal(t, "abcd", w.buf.String())

	unlimited := &capWriter{}
	_, err = unlimited.Write([]byte("abcdef"))
	require.NoError(t, err)
	require.False(t, unlimited.exceeded)
}
