package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"tldball/cmd/tldball/app"
	"tldball/internal/limiter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	httpClient := &http.Client{}

	clock := limiter.NewClock()

	err := app.Run(ctx, os.Args, os.Stdout, os.Stderr, httpClient, clock)
	stop()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
