package config

import "os"

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok || development == "" {
		return false
	}
	return development != "0" && development != "false"
}
