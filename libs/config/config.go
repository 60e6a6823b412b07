package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func String(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func RequiredString(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

// PositiveInt returns the value of key, or fallback when unset, unparsable or not > 0.
func PositiveInt(key string, fallback int) int {
	v, err := strconv.Atoi(String(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// Seconds reads a positive number of seconds as a duration.
func Seconds(key string, fallback time.Duration) time.Duration {
	v := PositiveInt(key, 0)
	if v == 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

func Bool(key string, fallback bool) bool {
	switch strings.ToLower(String(key, "")) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
