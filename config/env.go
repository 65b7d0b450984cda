package config

import "os"

// The runtime environment comes from the ENV variable; anything
// unrecognized counts as development.

func IsDevelopment() bool {
	return environment() == "development"
}

func IsProduction() bool {
	return environment() == "production"
}

func environment() string {
	switch env := os.Getenv("ENV"); env {
	case "production", "test":
		return env
	default:
		return "development"
	}
}
