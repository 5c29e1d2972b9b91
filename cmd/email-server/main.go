package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"mail-assistant-go/internal/app"
)

func main() {
	envFile := flag.String("env-file", "", "Path to env file")
	flag.Parse()

	if err := app.RunEmailServer(*envFile); err != nil {
		logrus.Fatalf("application error: %v", err)
	}
}
