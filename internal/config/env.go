package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func lookupBool(name string, def bool) (bool, error) {
	s, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(s) == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def, fmt.Errorf("%s env variable is not a boolean: %w", name, err)
	}
	return v, nil
}

func lookupInt(name string, def int) (int, error) {
	s, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(s) == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def, fmt.Errorf("%s env variable is not an integer: %w", name, err)
	}
	return v, nil
}

// readSecret returns the value of name, or the trimmed contents of the file
// named by name+"_FILE".
func readSecret(name string) (string, error) {
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return "", fmt.Errorf("no %s or %s_FILE env variable set", name, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
