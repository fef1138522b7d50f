package generator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindling-io/kindling/internal/models"
)

// script writes an executable shell script and returns its path.
func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "gen.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestCommandGenerate(t *testing.T) {
	path := script(t, `read prompt; echo "<!-- $KINDLING_MODE: $prompt -->"; cat "$KINDLING_CODE_FILE"`)
	c := &Command{Path: path}

	out, err := c.Generate(context.Background(), Request{Mode: ModeSuggest, Prompt: "add a footer", Code: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<!-- suggest: add a footer -->\n<p>hi</p>", out)
}

func TestCommandPassesLargeCode(t *testing.T) {
	// Larger than the 128 KiB a single environment string may hold on Linux.
	code := strings.Repeat("<p>kindling</p>\n", 16*1024)
	require.Greater(t, len(code), 128*1024)

	c := &Command{Path: script(t, `read prompt; cat "$KINDLING_CODE_FILE"`)}
	out, err := c.Generate(context.Background(), Request{Prompt: "keep it", Code: code})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(code), out)

	// The staged file is gone once Generate returns.
	c = &Command{Path: script(t, `echo "$KINDLING_CODE_FILE"`)}
	staged, err := c.Generate(context.Background(), Request{Prompt: "x", Code: code})
	require.NoError(t, err)
	assert.NoFileExists(t, staged)
}

func TestCommandDefaultsToGenerateMode(t *testing.T) {
	c := &Command{Path: script(t, `echo "$KINDLING_MODE"`)}

	out, err := c.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "generate", out)
}

func TestCommandErrors(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		c := &Command{Path: "/bin/true"}
		_, err := c.Generate(context.Background(), Request{Prompt: "  "})
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		c := &Command{Path: script(t, `echo "quota exceeded" >&2; exit 3`)}
		_, err := c.Generate(context.Background(), Request{Prompt: "x"})
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("no output", func(t *testing.T) {
		c := &Command{Path: script(t, `exit 0`)}
		_, err := c.Generate(context.Background(), Request{Prompt: "x"})
		assert.ErrorContains(t, err, "no code")
	})

	t.Run("timeout", func(t *testing.T) {
		c := &Command{Path: script(t, `exec sleep 5`), Timeout: 50 * time.Millisecond}
		_, err := c.Generate(context.Background(), Request{Prompt: "x"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestFromSettings(t *testing.T) {
	s := models.NewSettings()
	_, err := FromSettings(s, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	s.Generator.Command = "kindling-no-such-generator"
	_, err = FromSettings(s, nil)
	assert.Error(t, err)

	s.Generator.Command = script(t, "echo ok")
	s.Generator.Args = []string{"--fast"}
	c, err := FromSettings(s, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"--fast"}, c.Args)
	assert.Equal(t, 2*time.Minute, c.Timeout)
}

func TestSetEnvReplaces(t *testing.T) {
	env := setEnv([]string{"A=1", "KINDLING_MODE=old"}, EnvMode, "new")
	assert.Equal(t, []string{"A=1", "KINDLING_MODE=new"}, env)
	assert.Equal(t, []string{"A=1", "B=2"}, setEnv([]string{"A=1"}, "B", "2"))
}
