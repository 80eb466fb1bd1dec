package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"i4.energy/across/tata/board"
	"i4.energy/across/tata/modem"
	"i4.energy/across/tata/service"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	flag.String("serial-port", "/dev/ttyS0", "Serial port to connect to the module")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "127.0.0.1:8080", "Bind address for the maintenance API")
	flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configPath), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger, err := newLogger(config, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	modemConfig, err := modem.NewConfigBuilder().
		WithATTimeout(5 * time.Second).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		Build()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create modem config")
	}

	m, err := modem.New(ctx, modemConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open modem")
	}
	events := m.Subscribe()

	var wg sync.WaitGroup
	wg.Go(func() {
		if err := m.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Modem loop stopped")
			stop()
		}
	})

	b := board.NewSysfs(board.Pins{
		LED:      config.Board.LED,
		PowerKey: config.Board.PowerKey,
	}, logger.With().Str("component", "board").Logger())

	if config.Board.Watchdog != "" {
		wd, err := board.OpenWatchdog(config.Board.Watchdog, board.DefaultFeedInterval)
		if err != nil {
			logger.Fatal().Err(err).Str("path", config.Board.Watchdog).Msg("Failed to open watchdog")
		}
		wg.Go(func() {
			if err := wd.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("Watchdog stopped")
			}
		})
	}

	svc := service.New(config.Device, service.Deps{
		Client: m,
		Board:  b,
		Events: events,
	})

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: NewServer(svc, logger.With().Str("component", "server").Logger()),
	}
	go func() {
		logger.Info().Str("address", httpServer.Addr).Msg("Starting maintenance API")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Maintenance API failed")
		}
	}()

	logger.Info().Str("serial_port", config.SerialPort).Msg("Starting tracker")
	if err := svc.Init(ctx); err == nil {
		ticker := time.NewTicker(config.Device.CheckPeriod())
		err = svc.Run(ctx, ticker.C, board.Alarm(ctx, config.AlarmSecond))
		ticker.Stop()
		logger.Info().Err(err).Msg("Tracker stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info().Msg("Closing maintenance API")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to gracefully shutdown server")
	}

	logger.Info().Msg("Closing modem connection")
	if err := m.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close modem")
	}
	wg.Wait()
}

func newLogger(config *Config, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return zerolog.Logger{}, err
	}
	if config.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
