// Package generator talks to the external code generator. The generator is
// any executable: it reads the prompt on stdin and writes code to stdout.
// The current code is handed over in a temporary file named by
// KINDLING_CODE_FILE, since a page can outgrow the kernel's limit on a
// single environment string.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kindling-io/kindling/internal/models"
)

// Mode tells the generator what the output is for.
type Mode string

const (
	// ModeGenerate asks for a full replacement of the code.
	ModeGenerate Mode = "generate"
	// ModeSuggest asks for a snippet to append.
	ModeSuggest Mode = "suggest"
)

// Environment variables passed to the generator process.
const (
	EnvCodeFile = "KINDLING_CODE_FILE"
	EnvMode = "KINDLING_MODE"
)

// ErrNotConfigured is returned when no generator command is set.
var ErrNotConfigured = errors.New("no generator configured; set generator.command in settings.yaml")

// ErrEmptyPrompt is returned for a blank prompt.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Request is one generation request.
type Request struct {
	Mode   Mode
	Prompt string
	Code   string
}

// Generator produces code for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Command runs an external executable per request.
type Command struct {
	Path    string
	Args    []string
	Timeout time.Duration
	Logger  *slog.Logger
}

// FromSettings builds a Command from settings. It returns ErrNotConfigured
// when generator.command is empty.
func FromSettings(s *models.Settings, logger *slog.Logger) (*Command, error) {
	if s == nil || strings.TrimSpace(s.Generator.Command) == "" {
		return nil, ErrNotConfigured
	}
	path, err := exec.LookPath(s.Generator.Command)
	if err != nil {
		return nil, fmt.Errorf("generator %q not found: %w", s.Generator.Command, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{
		Path:    path,
		Args:    s.Generator.Args,
		Timeout: s.GeneratorTimeout(),
		Logger:  logger.With("component", "generator"),
	}, nil
}

// Generate runs the command and returns its trimmed stdout.
func (c *Command) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if req.Mode == "" {
		req.Mode = ModeGenerate
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	codeFile, err := writeCodeFile(req.Code)
	if err != nil {
		return "", err
	}
	defer os.Remove(codeFile)

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	env := os.Environ()
	env = setEnv(env, EnvCodeFile, codeFile)
	env = setEnv(env, EnvMode, string(req.Mode))
	cmd.Env = env
	cmd.Stdin = strings.NewReader(req.Prompt)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	logger := c.logger()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("generator timed out: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		logger.Warn("generator failed", "mode", string(req.Mode), "error", err, "stderr", msg)
		if msg != "" {
			return "", fmt.Errorf("generator failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("generator failed: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	logger.Debug("generator finished", "mode", string(req.Mode), "bytes", len(out), "elapsed", time.Since(start))
	if out == "" {
		return "", errors.New("generator returned no code")
	}
	return out, nil
}

func (c *Command) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// writeCodeFile stores code in a fresh temporary file and returns its path.
func writeCodeFile(code string) (string, error) {
	f, err := os.CreateTemp("", "kindling-code-*.html")
	if err != nil {
		return "", fmt.Errorf("failed to stage code for generator: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage code for generator: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage code for generator: %w", err)
	}
	return f.Name(), nil
}

// setEnv sets or replaces an environment variable in a slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
