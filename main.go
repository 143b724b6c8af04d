package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)

	app := NewApp()
	if err := app.startup(context.Background()); err != nil {
		log.Fatalf("[app] startup failed: %v", err)
	}
	defer app.shutdown()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("[app] shutting down")
}
