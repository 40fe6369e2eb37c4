package runner

import (
	"bytes"
	"testing"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/require"
)

func muxedStreams(t *testing.T, stdout, stderr string) []byte {
	t.Helper()
	var mux bytes.Buffer
	_, err := stdcopy.NewStdWriter(&mux, stdcopy.Stdout).Write([]byte(stdout))
	require.NoError(t, err)
	_, err = stdcopy.NewStdWriter(&mux, stdcopy.Stderr).Write([]byte(stderr))
	require.NoError(t, err)
	return mux.Bytes()
}

func TestDemuxStreamsSplitsStdoutAndStderr(t *testing.T) {
	raw := muxedStreams(t, "42\n", "diag\n")

	out := demuxStreams(bytes.NewReader(raw), 0)
	require.NoError(t, out.err)
	require.Equal(t, "42\n", out.stdout.buf.String())
	require.Equal(t, "diag\n", out.stderr.buf.String())
	require.False(t, out.stdout.exceeded)
}

func TestDemuxStreamsAppliesOutputBudget(t *testing.T) {
	raw := muxedStreams(t, "0123456789", "")

	out := demuxStreams(bytes.NewReader(raw), 4)
	require.NoError(t, out.err)
	require.True(t, out.stdout.exceeded)
	require.Equal(t, "0123", out.stdout.buf.String())
}
