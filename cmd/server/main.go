package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arjunkv/auction-backend/internal/config"
	"github.com/arjunkv/auction-backend/internal/httpapi"
	"github.com/arjunkv/auction-backend/internal/room"
	"github.com/arjunkv/auction-backend/internal/store/gormstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := gormstore.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}

	ctx := context.Background()
	rm := room.NewRoom(ctx, room.Deps{
		Ledger:     st,
		Registry:   st,
		Configs:    st,
		Logger:     logger,
		ResetDelay: cfg.ResetDelay,
	})

	handler := httpapi.SetupRoutes(rm, st, logger)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(rawLevel string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(rawLevel); err != nil {
		level = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
