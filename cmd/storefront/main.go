// Command storefront is a terminal front end for the shop: browse the
// catalog, fill a cart and place an order against the store API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/tiendaonline/storefront/internal/apiclient"
	"github.com/tiendaonline/storefront/internal/config"
	"github.com/tiendaonline/storefront/internal/storefront"
)

func main() {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	log, err := zcfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	client, err := apiclient.New(cfg.APIURL)
	if err != nil {
		log.Fatal("api client", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sess := storefront.Start(ctx, client, log)
	sh := newShell(sess, os.Stdout)
	sh.Run(ctx, os.Stdin)
}
