// Command projectflow serves the ProjectFlow REST API, the realtime socket
// and Prometheus metrics.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/projectflow/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
