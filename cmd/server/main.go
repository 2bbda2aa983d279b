package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/asset"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/auth"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/config"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/session"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	editorOpts, err := cfg.Editor()
	if err != nil {
		slog.Error("editor config", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	hub := session.NewHub(editorOpts)
	go hub.Run()

	assetHandler := asset.NewHandler(hub)

	r := mux.NewRouter()
	r.Use(recovery)
	r.Use(logger)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Drawing access (public)
	r.HandleFunc("/drawings", authHandler.Create).Methods("POST")
	r.HandleFunc("/drawings/{drawingId}/tokens", authHandler.Join).Methods("POST")

	// Routes requiring a token for the drawing
	drawing := r.PathPrefix("/drawings/{drawingId}").Subrouter()
	drawing.Use(authService.Middleware)
	drawing.HandleFunc("/image", assetHandler.Upload).Methods("POST", "OPTIONS")
	drawing.HandleFunc("/image", assetHandler.Download).Methods("GET")
	drawing.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, cfg.Origins())
	})

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
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "canvas", fmt.Sprintf("%dx%d", editorOpts.Width, editorOpts.Height))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *session.Hub, origins []string) {
	drawingID := mux.Vars(r)["drawingId"]
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	if err := hub.Serve(r.Context(), conn, claims.Subject, claims.DisplayName, drawingID); err != nil {
		slog.Warn("websocket session", "error", err, "drawing", drawingID)
	}
}

func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.Error("panic", "error", v, "path", r.URL.Path)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
