// Command gatelinkbot is a minimal wiring example: load a token from .env,
// look up the gateway URL, and run the supervisor loop until interrupted.
// Grounded on RaresGeo-discord_go's main.go .env-loading idiom and
// wrapper/sessions_test.go's os.Getenv("TOKEN") convention.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/corvusdev/gatelink/dispatch"
	"github.com/corvusdev/gatelink/gateway"
	"github.com/corvusdev/gatelink/restclient"
	"github.com/corvusdev/gatelink/supervisor"
	"github.com/corvusdev/gatelink/transport"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from the environment")
	}

	token := os.Getenv("TOKEN")
	if token == "" {
		log.Fatal("TOKEN must be set")
	}

	rest := restclient.NewClient(token)

	bot, err := rest.GetGatewayBot()
	if err != nil {
		log.Fatalf("failed to look up gateway: %v", err)
	}

	sink := dispatch.NewSink(64)
	go drain(sink)

	external := make(chan gateway.Message)

	settings := gateway.GatewaySettings{
		Token:   token,
		Intents: 0,
	}

	build := func(ctx context.Context, prior *gateway.ResumeData) (*gateway.Machine, error) {
		conn, err := transport.Dial(ctx, bot.URL+"/?v=10&encoding=json")
		if err != nil {
			return nil, err
		}

		return gateway.NewMachine(settings, prior, conn, sink, external), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := supervisor.Run(ctx, build, nil); err != nil {
		log.Printf("supervisor exited: %v", err)
	}
}

func drain(sink *dispatch.Sink) {
	for {
		select {
		case msg := <-sink.Messages():
			switch msg.(type) {
			case gateway.DispatchMessage:
				// application-specific event handling lives downstream of
				// this package; the core only guarantees delivery order.
			}

		case <-sink.Done():
			return
		}
	}
}
