package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: waiter [-config waiter.yaml] <command> [args]

commands:
  menu                          list products
  order [-drop-conflicts] ID:QTY...
                                submit an order, queueing it when the server is unreachable
  queue                         show queued orders
  sync                          submit queued orders once
  watch                         keep syncing while connectivity comes and goes
  drop ID                       remove a queued order
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "waiter:", err)
		os.Exit(1)
	}
}
