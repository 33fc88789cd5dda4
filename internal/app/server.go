package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/GoArmGo/TaskManager/internal/handler"
)

const shutdownTimeout = 30 * time.Second

// runServer слушает SERVER_PORT и обслуживает HTTP API до отмены ctx
func (a *App) runServer(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", a.Config.ServerPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ошибка при запуске сервера на %s: %w", addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           handler.NewRouter(a.users, a.tasks, a.Config.RequestTimeout, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("сервер запущен", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("получен сигнал завершения, останавливаем сервер")

	ctxServer, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("сервер успешно завершил работу")
	return nil
}
