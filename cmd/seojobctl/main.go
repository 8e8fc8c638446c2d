package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/seoqueue/pkg/logx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the JSON result
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))
	logx.SetOutput(os.Stderr)

	if err := newApp().Run(ctx, os.Args); err != nil {
		logx.WithError(err).Error("seojobctl failed")
		os.Exit(1)
	}
}
