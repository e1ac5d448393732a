package app

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"coinboard/internal/domain"
	"coinboard/internal/engine"
	"coinboard/pkg/format"
)

var (
	positiveColor = color.New(color.FgGreen)
	negativeColor = color.New(color.FgRed)
	headerColor   = color.New(color.Bold)
	errorColor    = color.New(color.FgRed, color.Bold)
	dimColor      = color.New(color.Faint)
)

// Renderer prints controller snapshots as aligned text tables.
type Renderer struct {
	w     io.Writer
	watch *domain.Watchlist
	hints bool // mention :retry and :more
	now   func() time.Time
}

// NewRenderer creates a renderer; watch may be nil.
func NewRenderer(w io.Writer, watch *domain.Watchlist) *Renderer {
	return &Renderer{w: w, watch: watch, now: time.Now}
}

// WithCommandHints makes the renderer point at the interactive commands.
func (r *Renderer) WithCommandHints() *Renderer {
	r.hints = true
	return r
}

// table buffers rows so that colour is applied after tabwriter has padded
// them. Escape codes would otherwise count towards the cell width.
type table struct {
	out   io.Writer
	buf   bytes.Buffer
	tw    *tabwriter.Writer
	paint []func(string) string
}

func (r *Renderer) table() *table {
	t := &table{out: r.w}
	t.tw = tabwriter.NewWriter(&t.buf, 0, 0, 2, ' ', 0)
	return t
}

// row writes one line of cells. paint, if not nil, receives the padded line.
func (t *table) row(paint func(string) string, cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
	t.paint = append(t.paint, paint)
}

func (t *table) flush() {
	t.tw.Flush()
	if t.buf.Len() == 0 {
		return
	}
	lines := strings.Split(strings.TrimSuffix(t.buf.String(), "\n"), "\n")
	for i, line := range lines {
		if i < len(t.paint) && t.paint[i] != nil {
			line = t.paint[i](line)
		}
		fmt.Fprintln(t.out, line)
	}
}

func paintHeader(line string) string {
	return headerColor.Sprint(line)
}

// paintTail colours the last cell of a padded line. The last cell is never padded,
// so it is always the suffix of the line.
func paintTail(plain, painted string) func(string) string {
	if plain == "" {
		return nil
	}
	return func(line string) string {
		if !strings.HasSuffix(line, plain) {
			return line
		}
		return strings.TrimSuffix(line, plain) + painted
	}
}

// age renders how long ago t was, in the largest whole unit.
func (r *Renderer) age(t time.Time) string {
	d := r.now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

// paintChange colours s by the sign of value.
func paintChange(value float64, s string) string {
	switch format.ChangeColorClass(value) {
	case format.Positive:
		return positiveColor.Sprint(s)
	case format.Negative:
		return negativeColor.Sprint(s)
	default:
		return s
	}
}

func (r *Renderer) star(id string) string {
	if r.watch != nil && r.watch.Has(id) {
		return "★"
	}
	return " "
}

// Coins renders the market table, or its loading/error/empty state.
func (r *Renderer) Coins(st engine.CoinListState) {
	switch {
	case st.Status == engine.StatusError:
		errorColor.Fprintf(r.w, "Error: %s\n", st.Error)
		if r.hints {
			fmt.Fprintln(r.w, "Type :retry to try again.")
		}
		return
	case st.Loading && len(st.Coins) == 0:
		fmt.Fprintln(r.w, "Loading...")
		return
	case len(st.Coins) == 0 && st.Query != "":
		fmt.Fprintf(r.w, "No coins match %q in the %d loaded.\n", st.Query, st.Total)
		return
	case len(st.Coins) == 0:
		fmt.Fprintln(r.w, "No coins.")
		return
	}

	tw := r.table()
	// 24H goes last: it is the only coloured column
	tw.row(paintHeader, " ", "#", "COIN", "PRICE", "MARKET CAP", "VOLUME", "24H")
	for _, c := range st.Coins {
		change := format.Percentage(c.PriceChangePercentage24h)
		tw.row(paintTail(change, paintChange(c.PriceChangePercentage24h, change)),
			r.star(c.ID),
			fmt.Sprintf("%d", c.MarketCapRank),
			fmt.Sprintf("%s (%s)", c.Name, c.Symbol),
			format.Currency(c.CurrentPrice, st.Currency),
			format.MarketCap(c.MarketCap),
			format.Volume(c.TotalVolume),
			change,
		)
	}
	tw.flush()

	footer := fmt.Sprintf("page %d · sort %s · %d shown", st.Page, st.Sort, len(st.Coins))
	if st.Query != "" {
		footer += fmt.Sprintf(" of %d (filter %q)", st.Total, st.Query)
	}
	if ts, ok := domain.LatestUpdate(st.Coins); ok {
		footer += " · updated " + r.age(ts)
	}
	if st.HasMore && r.hints {
		footer += " · :more for next page"
	}
	dimColor.Fprintln(r.w, footer)
}

// Highlights renders the three panels.
func (r *Renderer) Highlights(st engine.HighlightsState) {
	if st.Status == engine.StatusError {
		errorColor.Fprintf(r.w, "Error: %s\n", st.Error)
		return
	}
	if st.Loading {
		fmt.Fprintln(r.w, "Loading highlights...")
		return
	}

	r.highlightPanel("🔥 Trending", st.Trending)
	r.highlightPanel("📈 Top Gainers", st.Gainers)
	r.highlightPanel("📉 Top Losers", st.Losers)
}

func (r *Renderer) highlightPanel(title string, coins []domain.HighlightCoin) {
	headerColor.Fprintln(r.w, title)
	if len(coins) == 0 {
		fmt.Fprintln(r.w, "  (none)")
		fmt.Fprintln(r.w)
		return
	}

	tw := r.table()
	for i, c := range coins {
		price, change := "", ""
		// Trending items carry no price data
		if c.HasPrice() {
			price = format.Currency(c.CurrentPrice, "USD")
		}
		if c.HasChange() {
			change = format.Percentage(c.PriceChangePercentage24h)
		}
		tw.row(paintTail(change, paintChange(c.PriceChangePercentage24h, change)),
			"  "+r.star(c.ID), fmt.Sprintf("%d.", i+1), c.Name, c.Symbol, price, change)
	}
	tw.flush()
	fmt.Fprintln(r.w)
}

// Details renders the single-coin view.
func (r *Renderer) Details(d *domain.CoinDetails) {
	headerColor.Fprintf(r.w, "%s %s (%s)\n", r.star(d.ID), d.Name, d.Symbol)

	tw := r.table()
	row := func(k, v string) {
		if v != "" {
			tw.row(nil, "  "+k, v)
		}
	}
	if d.MarketCapRank > 0 {
		row("Rank", fmt.Sprintf("#%d", d.MarketCapRank))
	}
	row("Price", format.Currency(d.CurrentPrice, d.Currency))
	abs, pct := format.Signed(d.PriceChange24h, d.Currency), format.Percentage(d.PriceChangePercentage24h)
	tw.row(paintTail(abs+" "+pct, paintChange(d.PriceChange24h, abs)+" "+paintChange(d.PriceChangePercentage24h, pct)),
		"  24h change", abs+" "+pct)
	row("24h range", format.Currency(d.Low24h, d.Currency)+" - "+format.Currency(d.High24h, d.Currency))
	row("Market cap", format.MarketCap(d.MarketCap))
	row("Volume", format.Volume(d.TotalVolume))
	row("ATH", format.Currency(d.ATH, d.Currency))
	row("ATL", format.Currency(d.ATL, d.Currency))
	row("Genesis", d.GenesisDate)
	row("Homepage", d.Homepage)
	if ts, err := d.LastUpdatedAt(); err == nil {
		row("Updated", ts.UTC().Format("2006-01-02 15:04 UTC")+" ("+r.age(ts)+")")
	} else {
		row("Updated", d.LastUpdated)
	}
	tw.flush()

	if d.Description != "" {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, truncate(d.Description, 600))
	}
}

// SearchResults renders remote search hits.
func (r *Renderer) SearchResults(query string, results []domain.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintf(r.w, "No results for %q.\n", query)
		return
	}
	tw := r.table()
	tw.row(paintHeader, " ", "RANK", "ID", "NAME", "SYMBOL")
	for _, s := range results {
		rank := "-"
		if s.MarketCapRank > 0 {
			rank = fmt.Sprintf("%d", s.MarketCapRank)
		}
		tw.row(nil, r.star(s.ID), rank, s.ID, s.Name, s.Symbol)
	}
	tw.flush()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
