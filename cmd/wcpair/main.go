// wcpair pairs with a peer from a pairing URI over a websocket relay and
// reports diagnostic logs and peer deletions until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Execute(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "wcpair: %v\n", err)
		os.Exit(1)
	}
}
