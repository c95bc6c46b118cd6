package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"hlsimple/config"
	"hlsimple/pkg/client"
	"hlsimple/pkg/exchange/hpl"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

func main() {
	taskFile := flag.String("config", "hlsimple.yaml", "task config file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()
	configureLog(*verbose)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("fail to load config: %v", err)
	}
	task, err := config.LoadTaskConfig(*taskFile)
	if err != nil {
		log.Fatalf("fail to load task config '%s': %v", *taskFile, err)
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	hplExchg, err := hpl.New(cfg)
	if err != nil {
		log.Fatalf("fail to init exchange: %v", err)
	}
	c := client.New(hplExchg, hplExchg.Address(), nil)

	printSnapshot(c, task.Symbols)

	if task.Watch {
		watchPrices(rootCtx, hplExchg, task.Symbols)
	}
}

func printSnapshot(c *client.Client, symbols []string) {
	for _, symbol := range symbols {
		px, err := c.GetPrice(symbol)
		if err != nil {
			log.Errorf("fail to get price for %s: %v", symbol, err)
			continue
		}
		log.Infof("%s mid: %s", symbol, px)
	}

	if !c.IsAuthenticated() {
		log.Info("no account address configured, skipping account state")
		return
	}

	balance, err := c.GetPerpBalance()
	if err != nil {
		log.Errorf("fail to get perp balance: %v", err)
	} else {
		log.Infof("perp balance: %s", balance)
	}

	positions, err := c.GetPositions()
	if err != nil {
		log.Errorf("fail to get positions: %v", err)
		return
	}
	if len(positions) == 0 {
		log.Info("no open positions")
	}
	for _, position := range positions {
		log.Infof("position %s: size=%s entry=%s uPnL=%s lev=%sx",
			position.Symbol, position.Size, position.EntryPrice, position.UnrealizedPnl, position.Leverage.Value)
	}

	orders, err := c.GetOpenOrders("")
	if err != nil {
		log.Errorf("fail to get open orders: %v", err)
		return
	}
	for _, order := range orders {
		log.Infof("open order %s: %s %s %s size=%s", order.OrderID, order.Symbol, order.Side, order.Type, order.Size)
	}
}

func watchPrices(ctx context.Context, hplExchg *hpl.Exchange, symbols []string) {
	watched := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		watched[symbol] = true
	}

	stream, err := hplExchg.SubscribePrices(ctx, func(mids map[string]decimal.Decimal) {
		for symbol, px := range mids {
			if watched[symbol] {
				log.Infof("%s mid: %s", symbol, px)
			}
		}
	})
	if err != nil {
		log.Fatalf("fail to subscribe price stream: %v", err)
	}
	<-stream.Done()
}

func configureLog(verbose bool) {
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

func setupSignalHandler(cancel context.CancelFunc) {
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigC
		log.Info("received shutdown signal")
		cancel()
	}()
}
