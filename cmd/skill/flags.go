package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

var flagRunAddr string
var flagLogLevel string
var flagSpeechEndpoint string
var flagSpeechKey string
var flagAppID string
var flagAppPassword string
var flagTokenURL string
var flagTrustedSuffix string
var flagWebhookSecret string

func parseFlags() {
	// optional .env file alongside the binary
	_ = godotenv.Load()

	flag.StringVar(&flagRunAddr, "a", ":8080", "address and port")
	flag.StringVar(&flagLogLevel, "l", "debug", "log level")
	flag.StringVar(&flagSpeechEndpoint, "s", "", "speech recognition endpoint")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDR"); envRunAddr != "" {
		flagRunAddr = envRunAddr
	}

	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		flagLogLevel = envLogLevel
	}

	if envSpeechEndpoint := os.Getenv("SPEECH_ENDPOINT"); envSpeechEndpoint != "" {
		flagSpeechEndpoint = envSpeechEndpoint
	}

	flagSpeechKey = os.Getenv("SPEECH_API_KEY")
	flagAppID = os.Getenv("BOT_APP_ID")
	flagAppPassword = os.Getenv("BOT_APP_PASSWORD")
	flagTokenURL = os.Getenv("BOT_TOKEN_URL")
	flagTrustedSuffix = os.Getenv("TRUSTED_HOST_SUFFIX")
	flagWebhookSecret = os.Getenv("WEBHOOK_SECRET")
}
