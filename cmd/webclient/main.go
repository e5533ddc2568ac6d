package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogclient/internal/api"
	"blogclient/internal/app"
	"blogclient/internal/blog"
	httpx "blogclient/internal/http"
	"blogclient/internal/log"
	"blogclient/internal/session"
	"blogclient/internal/token"
)

func main() {
	cfg := app.LoadConfig()

	tokens, err := token.Open(cfg.TokenPath)
	app.Must(err)

	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, tokens.Token)
	sess := session.NewStore(client, tokens)
	posts := blog.NewStore(client)

	// la rehidratación corre en paralelo al arranque; mientras no
	// termine, las rutas protegidas difieren en vez de redirigir
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		sess.Rehydrate(ctx)
	}()

	srv := httpx.NewServer(sess, posts, cfg)

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      httpx.WithAccessLog(srv),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info.Printf("blog client on %s (api %s, env %s)", cfg.Addr, cfg.APIBaseURL, cfg.Env)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn.Printf("shutdown error: %v", err)
	}
}
