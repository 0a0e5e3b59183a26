package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/gorilla/mux"

	"github.com/inamate/pleat/internal/asset"
	"github.com/inamate/pleat/internal/camera"
	"github.com/inamate/pleat/internal/config"
	"github.com/inamate/pleat/internal/engine"
	"github.com/inamate/pleat/internal/export"
	mw "github.com/inamate/pleat/internal/middleware"
	"github.com/inamate/pleat/internal/preview"
	"github.com/inamate/pleat/internal/raster"
	"github.com/inamate/pleat/internal/remote"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)
	raster.SetLogger(log.With("component", "raster"))

	// Uploaded frames stand in for a camera on the server side.
	still := camera.NewStill(nil)
	assetHandler := asset.NewHandler(cfg.FrameDir, func(id string, img image.Image) {
		still.Set(img)
		log.Info("video frame updated", "frame", id)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := assetHandler.Watch(ctx); err != nil {
		slog.Warn("frame directory not watched", "error", err)
	}

	hub := remote.NewHub(engine.Options{
		Radius:       cfg.HexRadius,
		Pleat:        cfg.PleatDepth,
		Slices:       cfg.DefaultSlices,
		MaxSlices:    cfg.MaxSlices,
		HandleRadius: cfg.HandleRadius,
		Source:       still,
	}, cfg.Origins(), log.With("component", "remote"))
	go hub.Run()

	previewHandler := preview.NewHandler(preview.Options{
		Radius:     cfg.HexRadius,
		Pleat:      cfg.PleatDepth,
		MaxSlices:  cfg.MaxSlices,
		Background: gg.Hex(cfg.Background),
	}, assetHandler, still.Frame)
	exportHandler := export.NewHandler(cfg.FfmpegPath, previewHandler)

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, hub.Count())
	}).Methods("GET")

	// Frames and previews are fetched by hosts on other origins.
	api := r.NewRoute().Subrouter()
	api.Use(mw.CORS)
	api.HandleFunc("/frames/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	api.PathPrefix("/frames/").Handler(assetHandler.Serve()).Methods("GET")
	api.Handle("/preview.png", previewHandler).Methods("GET")
	api.HandleFunc("/export/turntable", exportHandler.ExportTurntable).Methods("GET")

	r.HandleFunc("/ws/session", hub.HandleWebSocket)

	// Static host page and the wasm build.
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first so pending camera work is cancelled
		hub.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "static", cfg.StaticDir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
