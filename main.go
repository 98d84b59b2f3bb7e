package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"rfid-kiosk/bot"
	"rfid-kiosk/config"
	"rfid-kiosk/internal/gatekeeper"
	"rfid-kiosk/internal/handlers"
	"rfid-kiosk/internal/repository"
	"rfid-kiosk/internal/scanner"
	"rfid-kiosk/internal/services"
	"rfid-kiosk/internal/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, initiating graceful shutdown...")
		cancel()
	}()

	processor, controller, handler := initApplication(ctx, cfg)

	if err := controller.Start(); err != nil {
		log.Printf("❌ Scan source failed to start: %v", err)
		processor.ShowServiceError("Der Scanner konnte nicht gestartet werden. Bitte das Personal informieren.")
	}

	// Feed raw reads into the pipeline. The events channel stays open
	// across start/stop cycles, so one dispatcher covers the process.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-controller.Events():
				go processor.HandleScanEvent(ev)
			}
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/api/simulate-scan", handler.HandleSimulateScan).Methods(http.MethodPost)
	router.HandleFunc("/api/status", handler.HandleStatus).Methods(http.MethodGet)
	router.HandleFunc("/health", handler.HandleHealth).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	if err := controller.Stop(); err != nil {
		log.Printf("Scan source stop error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// initApplication wires the scan pipeline together
func initApplication(ctx context.Context, cfg *config.Config) (*services.ScanProcessor, *scanner.Controller, *handlers.ScanHandler) {
	sess := session.New()
	api := repository.NewRESTScanAPI(cfg.APIURL, cfg.DeviceID, sess.AuthToken)

	gate := gatekeeper.New()
	gate.StartCleanup(ctx)

	// Hardware builds plug the reader driver in here; the mock keeps
	// development machines working without one.
	source := scanner.NewMockSource(cfg.MockTagPool)
	if !cfg.UseMockSource {
		log.Println("Warning: no hardware scan source in this build, falling back to mock generator")
	}
	controller := scanner.NewController(source)
	controller.SyncState()

	var notifier services.Notifier
	if n := initBot(cfg, controller); n != nil {
		notifier = n
	}

	processor := services.NewScanProcessor(api, sess, gate, notifier, nil, controller.ResumeIfNeeded)
	handler := handlers.NewScanHandler(processor, processor, controller, api)

	return processor, controller, handler
}

// initBot initializes the Telegram bot; returns nil when not configured
func initBot(cfg *config.Config, controller *scanner.Controller) *bot.Notifier {
	if cfg.TelegramBotToken == "" {
		return nil
	}

	statusFn := func() string {
		lastError, errorCount := controller.LastError()
		text := fmt.Sprintf("📡 *Scanner:* %s\nScanning: %v", controller.State(), controller.IsScanning())
		if lastError != "" {
			text += fmt.Sprintf("\nLetzter Fehler: `%s` (%d)", lastError, errorCount)
		}
		return text
	}

	b, err := bot.Init(cfg.TelegramBotToken, cfg.AuthorizedChatID, statusFn)
	if err != nil {
		log.Printf("Warning: Failed to init Telegram Bot: %v", err)
		return nil
	}
	b.StartPolling()
	log.Println("Telegram Bot Initialized")
	return bot.NewNotifier(b)
}
