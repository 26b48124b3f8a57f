package opener

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesearch/internal/domain"
)

func TestPlatformDefault(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", nil},
		{"linux", "xdg-open", nil},
		{"freebsd", "xdg-open", nil},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := platformDefault(tt.goos)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestOpen_AppendsURL(t *testing.T) {
	c := New("firefox", []string{"--new-tab"}, nil)
	var got *exec.Cmd
	c.start = func(cmd *exec.Cmd) error { got = cmd; return nil }

	const u = "https://www.google.com/search?q=x+site%3Aa.com"
	require.NoError(t, c.Open(context.Background(), u))
	require.NotNil(t, got)
	assert.Equal(t, []string{"firefox", "--new-tab", u}, got.Args)
	assert.Equal(t, "firefox", c.Program())
}

func TestOpen_DoesNotMutateArgs(t *testing.T) {
	args := make([]string, 1, 4)
	args[0] = "-a"
	c := New("open", args, nil)
	c.start = func(*exec.Cmd) error { return nil }
	require.NoError(t, c.Open(context.Background(), "https://a"))
	require.NoError(t, c.Open(context.Background(), "https://b"))
	assert.Equal(t, []string{"-a"}, c.args)
}

func TestOpen_StartFailure(t *testing.T) {
	c := New("missing-browser", nil, nil)
	c.start = func(*exec.Cmd) error { return exec.ErrNotFound }
	err := c.Open(context.Background(), "https://a")
	assert.ErrorIs(t, err, domain.ErrOpenFailed)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestOpen_Canceled(t *testing.T) {
	c := New("x", nil, nil)
	c.start = func(*exec.Cmd) error { t.Fatal("should not start"); return nil }
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Open(ctx, "https://a"), context.Canceled)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{}.Open(context.Background(), "https://a"))
}
