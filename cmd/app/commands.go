package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli"
	"go.uber.org/multierr"

	"coinboard/internal/app"
	"coinboard/internal/domain"
	"coinboard/internal/infra"
)

// newApp builds the command tree. ctx is cancelled on SIGINT/SIGTERM.
func newApp(ctx context.Context, in io.Reader, out io.Writer) *cli.App {
	a := cli.NewApp()
	a.Name = infra.AppName
	a.Usage = "CoinGecko market dashboard for the terminal"
	a.Version = version
	a.Writer = out
	a.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "path to config.yaml (default: configs/config.yaml)"},
		cli.StringFlag{Name: "log-level", Usage: "debug | info | warn | error"},
	}

	currencyFlag := cli.StringFlag{Name: "currency", Usage: "quote currency, e.g. usd, eur, krw"}

	a.Commands = []cli.Command{
		{
			Name:  "dashboard",
			Usage: "show highlights and the first page of the market table",
			Flags: []cli.Flag{currencyFlag},
			Action: func(c *cli.Context) error {
				return runDashboard(ctx, c, out)
			},
		},
		{
			Name:  "markets",
			Usage: "list coins by market data",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "page, p", Value: 1, Usage: "load pages 1..N"},
				cli.StringFlag{Name: "sort, s", Value: "rank", Usage: "rank | price | change | cap | volume"},
				cli.BoolFlag{Name: "desc", Usage: "sort descending"},
				cli.StringFlag{Name: "search, q", Usage: "filter loaded coins by name or symbol"},
				cli.StringFlag{Name: "watch", Usage: "comma-separated coin ids to star"},
				currencyFlag,
			},
			Action: func(c *cli.Context) error {
				return runMarkets(ctx, c, out)
			},
		},
		{
			Name:  "highlights",
			Usage: "show trending coins, top gainers and top losers",
			Action: func(c *cli.Context) error {
				return runHighlights(ctx, c, out)
			},
		},
		{
			Name:      "coin",
			Usage:     "show details of one coin",
			ArgsUsage: "<id>",
			Flags:     []cli.Flag{currencyFlag},
			Action: func(c *cli.Context) error {
				return runCoin(ctx, c, out)
			},
		},
		{
			Name:      "search",
			Usage:     "search every coin CoinGecko knows",
			ArgsUsage: "<query>",
			Action: func(c *cli.Context) error {
				return runSearch(ctx, c, out)
			},
		},
		{
			Name:  "browse",
			Usage: "interactive market table",
			Flags: []cli.Flag{currencyFlag},
			Action: func(c *cli.Context) error {
				return runBrowse(ctx, c, in, out)
			},
		},
	}
	a.Action = func(c *cli.Context) error {
		return runDashboard(ctx, c, out)
	}
	return a
}

// setup runs the bootstrap with global and command-level overrides.
func setup(c *cli.Context) (*app.Bootstrap, error) {
	b := app.NewBootstrap()
	err := b.Initialize(app.Options{
		ConfigPath: c.GlobalString("config"),
		LogLevel:   c.GlobalString("log-level"),
		Currency:   c.String("currency"),
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrapping failed: %w", err)
	}
	if version != "dev" {
		b.Config.App.Version = version
	}
	return b, nil
}

func runDashboard(ctx context.Context, c *cli.Context, out io.Writer) error {
	b, err := setup(c)
	if err != nil {
		return err
	}
	infra.PrintBanner(out, b.Config)

	list := b.NewCoinList(nil)
	highlights := b.NewHighlights(nil)

	var listErr, highlightsErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		listErr = list.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		highlightsErr = highlights.Load(ctx)
	}()
	wg.Wait()

	r := app.NewRenderer(out, b.Watchlist)
	r.Highlights(highlights.State())
	r.Coins(list.State())

	// Both panels are independent; report every failure at once
	return multierr.Combine(
		wrapIf(highlightsErr, "highlights"),
		wrapIf(listErr, "markets"),
	)
}

func runMarkets(ctx context.Context, c *cli.Context, out io.Writer) error {
	b, err := setup(c)
	if err != nil {
		return err
	}
	for _, id := range strings.Split(c.String("watch"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			b.Watchlist.Add(id)
		}
	}

	field, err := domain.ParseSortField(c.String("sort"))
	if err != nil {
		return err
	}
	order := domain.Ascending
	if c.Bool("desc") {
		order = domain.Descending
	}

	list := b.NewCoinList(nil)
	if err := list.Sort(ctx, domain.SortConfig{Field: field, Order: order}); err != nil {
		app.NewRenderer(out, b.Watchlist).Coins(list.State())
		return err
	}
	for list.State().Page < c.Int("page") && list.State().HasMore {
		if err := list.LoadMore(ctx); err != nil {
			app.NewRenderer(out, b.Watchlist).Coins(list.State())
			return err
		}
	}
	if q := c.String("search"); q != "" {
		list.Search(q)
	}

	app.NewRenderer(out, b.Watchlist).Coins(list.State())
	return nil
}

func runHighlights(ctx context.Context, c *cli.Context, out io.Writer) error {
	b, err := setup(c)
	if err != nil {
		return err
	}
	highlights := b.NewHighlights(nil)
	err = highlights.Load(ctx)
	app.NewRenderer(out, b.Watchlist).Highlights(highlights.State())
	return err
}

func runCoin(ctx context.Context, c *cli.Context, out io.Writer) error {
	if !c.Args().Present() {
		return errors.New("must pass the coin id, e.g. coinboard coin bitcoin")
	}
	b, err := setup(c)
	if err != nil {
		return err
	}
	details, err := b.Client.GetCoinDetails(ctx, c.Args().First(), b.Config.Market.Currency)
	if err != nil {
		return err
	}
	app.NewRenderer(out, b.Watchlist).Details(details)
	return nil
}

func runSearch(ctx context.Context, c *cli.Context, out io.Writer) error {
	if !c.Args().Present() {
		return errors.New("must pass a search query")
	}
	b, err := setup(c)
	if err != nil {
		return err
	}
	query := strings.Join(c.Args(), " ")
	results, err := b.Client.SearchCoins(ctx, query)
	if err != nil {
		return err
	}
	app.NewRenderer(out, b.Watchlist).SearchResults(query, results)
	return nil
}

func runBrowse(ctx context.Context, c *cli.Context, in io.Reader, out io.Writer) error {
	b, err := setup(c)
	if err != nil {
		return err
	}
	infra.PrintBanner(os.Stderr, b.Config)
	slog.Debug("Starting browse session", slog.Duration("search_debounce", b.Config.SearchDebounce()))

	browser := app.NewBrowser(in, out, b.NewCoinList(nil), b.Client, b.Watchlist, b.Config.SearchDebounce())
	return browser.Run(ctx)
}

func wrapIf(err error, what string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
