package infra

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintBanner displays the startup banner with the API tier in use
func PrintBanner(w io.Writer, cfg *Config) {
	tier := "PUBLIC (NO API KEY)"
	paint := color.New(color.FgYellow)
	if cfg.API.CoinGecko.APIKey != "" {
		tier = "DEMO API KEY"
		paint = color.New(color.FgGreen)
	}

	line := func(format string, a ...any) {
		paint.Fprintf(w, format, a...)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	line("###########################################################")
	line("#               🪙 %-38s #", cfg.App.Name)
	line("#   TIER:     %-43s #", tier)
	line("#   CURRENCY: %-43s #", cfg.Market.Currency)
	line("#   VERSION:  %-43s #", cfg.App.Version)
	line("###########################################################")

	if cfg.API.CoinGecko.APIKey == "" {
		color.New(color.FgYellow).Fprintln(w, "   Unauthenticated tier: expect HTTP 429 under load (requests are retried).")
	}
	fmt.Fprintln(w)
}
