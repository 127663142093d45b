package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ResolveValue handles magic schemes in config values:
// - $(...) -> shell command output
// - ${VAR} or $VAR -> environment variable
// - literal string -> returned as-is
func ResolveValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	if strings.HasPrefix(value, "$(") && strings.HasSuffix(value, ")") {
		return resolveCommand(value[2 : len(value)-1])
	}
	return expandEnv(value), nil
}

// resolveCommand executes a shell command and returns its output
func resolveCommand(cmd string) (string, error) {
	output, err := exec.Command("sh", "-c", cmd).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("command failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}
