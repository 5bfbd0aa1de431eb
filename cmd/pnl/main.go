package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tokenlens/pnl/internal/classifier"
	"github.com/tokenlens/pnl/internal/config"
	"github.com/tokenlens/pnl/internal/etherscan"
	"github.com/tokenlens/pnl/internal/market"
	"github.com/tokenlens/pnl/internal/position"
	"github.com/tokenlens/pnl/internal/price"
	"github.com/tokenlens/pnl/internal/resolver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := &cli.App{
		Name:  "pnl",
		Usage: "reconstruct a wallet's position and PnL for one ERC-20 token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "wallet",
				Aliases:  []string{"w"},
				Usage:    "wallet address (0x...)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "token",
				Aliases:  []string{"t"},
				Usage:    "ERC-20 token contract address (0x...)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "transactions",
				Usage: "include the per-transaction audit trail in the output",
			},
		},
		Action: run,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	walletArg := c.String("wallet")
	tokenArg := c.String("token")
	if !common.IsHexAddress(walletArg) {
		return fmt.Errorf("invalid wallet address: %q", walletArg)
	}
	if !common.IsHexAddress(tokenArg) {
		return fmt.Errorf("invalid token address: %q", tokenArg)
	}
	wallet := common.HexToAddress(walletArg)
	token := common.HexToAddress(tokenArg)

	cfg := config.Load()

	scan := etherscan.NewClient(cfg.EtherscanURL, cfg.EtherscanAPIKey, cfg.EtherscanRetryMax, cfg.EtherscanRetryDelay)
	dex := market.NewDexScreenerClient(cfg.DexScreenerURL)
	marketSvc := market.NewService(dex, scan)
	priceSvc := price.NewService(marketSvc)
	resolverSvc := resolver.NewService(scan)
	classifierSvc := classifier.NewService(priceSvc, marketSvc)

	accountant := position.NewAccountant(scan, resolverSvc, classifierSvc, marketSvc, cfg.FetchConcurrency)

	report, err := accountant.ComputePosition(c.Context, wallet, token)
	if err != nil {
		if errors.Is(err, position.ErrNoActivity) {
			return cli.Exit(fmt.Sprintf("no activity for wallet %s and token %s", wallet.Hex(), token.Hex()), 1)
		}
		return err
	}

	if !c.Bool("transactions") {
		report.Transactions = nil
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
