package cmd

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variables consulted for flag defaults.
const (
	EnvMachines    = "FACTORYSIM_MACHINES"
	EnvShiftLength = "FACTORYSIM_SHIFT_LENGTH"
	EnvSeed        = "FACTORYSIM_SEED"
	EnvConfig      = "FACTORYSIM_CONFIG"
)

// loadDotEnv loads a .env file if present. Variables already set in the
// environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found (using environment variables)")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logrus.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return n
}
