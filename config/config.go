package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Attendance backend
	APIURL   string // e.g. http://192.168.100.50:8000
	DeviceID string // terminal identifier sent with every scan

	// Diagnostics HTTP server
	HTTPAddr string

	// Scan source
	UseMockSource bool
	MockTagPool   []string // overrides the built-in pool when set

	// Telegram ops notifications (optional)
	TelegramBotToken string
	AuthorizedChatID string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("godotenv.Load() error: %v", err)
	}

	apiURL := os.Getenv("KIOSK_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}

	deviceID := os.Getenv("KIOSK_DEVICE_ID")
	if deviceID == "" {
		deviceID = "kiosk-dev"
	}

	httpAddr := os.Getenv("KIOSK_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	var pool []string
	if raw := os.Getenv("KIOSK_MOCK_TAGS"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				pool = append(pool, tag)
			}
		}
	}

	return &Config{
		APIURL:           apiURL,
		DeviceID:         deviceID,
		HTTPAddr:         httpAddr,
		UseMockSource:    os.Getenv("KIOSK_SCAN_SOURCE") != "hardware",
		MockTagPool:      pool,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthorizedChatID: os.Getenv("AUTHORIZED_CHAT_ID"),
	}, nil
}
