package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cloudwall/phemex-go/platform"
	"github.com/cloudwall/phemex-go/provider/phemex"
)

func main() {
	dry := flag.Bool("dry", false, "build orders but do not send them")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, *dry); err != nil {
		fmt.Println("condorder:", err)
		os.Exit(1)
	}

	fmt.Println("done.")
}

func run(ctx context.Context, dry bool) error {
	// Credentials come from the environment or a local .env file.
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	conn := phemex.New(phemex.Options{
		Credentials: phemex.AuthCredentials{
			APIKey:    os.Getenv("PHEMEX_API_KEY"),
			SecretKey: os.Getenv("PHEMEX_SECRET_KEY"),
		},
		Logger: logger,
	})

	btcusd := platform.Contract{Symbol: "BTCUSD"}

	limit, err := platform.NewLimitOrder(platform.SideSell, 1, decimal.RequireFromString("10000.0"), btcusd)
	if err != nil {
		return fmt.Errorf("build limit order: %w", err)
	}

	market, err := platform.NewMarketOrder(platform.SideSell, 1, btcusd)
	if err != nil {
		return fmt.Errorf("build market order: %w", err)
	}

	// Sell at market once the last trade price touches 10000.
	conditional, err := platform.NewConditionalOrder(platform.TriggerLastPrice, decimal.RequireFromString("10000.0"), market, false)
	if err != nil {
		return fmt.Errorf("build conditional order: %w", err)
	}

	if dry {
		fmt.Printf("limit: %+v\n", limit)
		fmt.Printf("conditional: %+v\n", conditional)
		return nil
	}

	placer := conn.OrderPlacer()

	limitHnd, err := placer.Submit(ctx, limit)
	if err != nil {
		return fmt.Errorf("submit limit order: %w", err)
	}
	fmt.Println("limit order placed:", limitHnd.OrderID())

	condHnd, err := placer.Submit(ctx, conditional)
	if err != nil {
		return fmt.Errorf("submit conditional order: %w", err)
	}
	fmt.Println("conditional order placed:", condHnd.OrderID())

	if err := limitHnd.Cancel(ctx); err != nil {
		return fmt.Errorf("cancel limit order: %w", err)
	}
	if err := condHnd.Cancel(ctx); err != nil {
		return fmt.Errorf("cancel conditional order: %w", err)
	}

	return nil
}
