package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var envRefPattern = regexp.MustCompile(`\${([^}]+)}`)

func loadAndExpandYaml(dir, name string) (string, error) {
	file := filepath.Join(dir, name+".yml")
	if _, err := os.Stat(file); err != nil {
		return "", fmt.Errorf("%s.yml not found", name)
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	return expandEnvStrict(string(raw))
}

// expandEnvStrict substitutes ${VAR} references, rejecting unset
// variables outright instead of silently expanding them to "".
func expandEnvStrict(s string) (string, error) {
	for _, m := range envRefPattern.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if _, ok := os.LookupEnv(name); !ok {
			return "", fmt.Errorf("environment variable %s is not set", name)
		}
	}
	return os.ExpandEnv(s), nil
}
