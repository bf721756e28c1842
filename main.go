package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"gannet/booking-reports/cmd/root"
	"gannet/booking-reports/cmd/run"
)

func init() {
	// Load environment variables silently first, then configure the log
	// level before any command produces output.
	loadEnvSilently()
	configureLogLevel()

	root.Init()
	root.Cmd.AddCommand(run.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func configureLogLevel() {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = logrus.InfoLevel
	}
	root.Log.SetLevel(level)
}

func main() {
	root.Execute()
}
