package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Tunelist/config"
	"Tunelist/core/library"
	"Tunelist/db"
	"Tunelist/logger"
	"Tunelist/repository"

	"github.com/gorilla/mux"
)

// NewRouter 注册全部路由。/lists 下的路由需要 JWT，/healthz 不需要
func NewRouter(h *APIHandler, jwtSecret []byte) http.Handler {
	router := mux.NewRouter()
	// 歌单名可能包含 '/'，按编码后的路径匹配
	router.UseEncodedPath()

	router.HandleFunc("/healthz", HealthHandler).Methods(http.MethodGet)

	lists := router.PathPrefix("/lists").Subrouter()
	lists.Use(AuthMiddleware(jwtSecret))

	lists.HandleFunc("", h.CreatePlaylistHandler).Methods(http.MethodPost)
	lists.HandleFunc("", h.ListPlaylistsHandler).Methods(http.MethodGet)
	lists.HandleFunc("/{name}", h.GetPlaylistHandler).Methods(http.MethodGet)
	lists.HandleFunc("/{name}", h.DeletePlaylistHandler).Methods(http.MethodDelete)
	lists.HandleFunc("/{name}/tracks", h.AddTrackHandler).Methods(http.MethodPost)
	lists.HandleFunc("/{name}/tracks", h.ListTracksHandler).Methods(http.MethodGet)
	lists.HandleFunc("/{name}/tracks/{id}", h.DeleteTrackHandler).Methods(http.MethodDelete)

	// 包在路由器外层，未匹配的请求（预检、404）也会经过
	return RequestLogger(CORSMiddleware(router))
}

// Start wires storage, the genre validator and the HTTP server, then blocks
// until SIGINT or SIGTERM.
func Start(cfg *config.Config) error {
	gdb, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close(gdb)

	if err := db.AutoMigrate(gdb); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	genres, closeValidator, err := NewGenreValidator(cfg)
	if err != nil {
		return err
	}
	defer closeValidator()

	svc := library.NewService(
		repository.NewGormPlaylistRepository(gdb),
		repository.NewGormTrackRepository(gdb),
		genres,
	)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      NewRouter(NewAPIHandler(svc), []byte(cfg.JWTSecret)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("[Server] 服务启动", logger.String("addr", cfg.ServerAddr),
			logger.String("dbDriver", cfg.DBDriver),
			logger.Bool("catalogValidation", cfg.CatalogEnabled()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-stop:
	}
	logger.Info("[Server] 正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("[Server] 服务已停止")
	return nil
}
