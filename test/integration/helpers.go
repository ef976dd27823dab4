//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/fivetwenty-io/gitlab-client/pkg/glclient"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	URL       string
	Token     string
	Project   string
	CLIPath   string
	AllowHook bool
	Verbose   bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:       os.Getenv("GITLAB_URL"),
		Token:     os.Getenv("GITLAB_TOKEN"),
		Project:   os.Getenv("GITLAB_TEST_PROJECT"),
		CLIPath:   getCLIPath(),
		AllowHook: os.Getenv("GITLAB_TEST_HOOKS") == "true",
		Verbose:   os.Getenv("GITLAB_API_VERBOSE") == "true",
	}
}

func getCLIPath() string {
	if path := os.Getenv("GITLAB_API_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../gitlab-api",
		"./gitlab-api",
		"../gitlab-api",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "gitlab-api"
}

// SkipIfMissingConfig skips the test when no instance is configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.Token == "" {
		t.Skip("GITLAB_URL or GITLAB_TOKEN not set, skipping integration test")
	}
}

// SkipIfMissingCLI skips the test when the gitlab-api binary cannot be found.
func (config *TestConfig) SkipIfMissingCLI(t *testing.T) {
	t.Helper()

	config.SkipIfMissingConfig(t)

	if _, err := exec.LookPath(config.CLIPath); err != nil {
		t.Skipf("gitlab-api binary not found at %s, skipping integration test", config.CLIPath)
	}
}

// NewClient builds a library client for the configured instance.
func (config *TestConfig) NewClient(t *testing.T) gitlab.Client {
	t.Helper()

	client, err := glclient.New(context.Background(), &gitlab.Config{
		BaseURL:      config.URL,
		PrivateToken: config.Token,
		HTTPTimeout:  30 * time.Second,
		UserAgent:    "gitlab-client-integration",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}

// CommandRunner runs gitlab-api against the configured instance.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a gitlab-api command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a gitlab-api command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.CLIPath, args...)
	cmd.Env = append(os.Environ(),
		"GITLAB_API_URL="+runner.config.URL,
		"GITLAB_API_TOKEN="+runner.config.Token,
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.CLIPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique test resource name.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}
