package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"coinboard/internal/domain"
	"coinboard/internal/engine"
	"coinboard/pkg/debounce"
)

// DetailsSource fetches the single-coin view. *coingecko.Client satisfies it.
type DetailsSource interface {
	GetCoinDetails(ctx context.Context, id, currency string) (*domain.CoinDetails, error)
}

const browseHelp = `Commands:
  <text>         filter loaded coins by name or symbol (empty line clears)
  :more          load the next page
  :sort <field>  sort by rank|price|change|cap|volume (again to reverse)
  :retry         reload from page 1
  :star <id>     toggle a coin on the watchlist
  :show <id>     show coin details
  :help          show this help
  :quit          exit`

// Browser is the interactive market table: one command per input line.
type Browser struct {
	in      io.Reader
	out     io.Writer
	list    *engine.CoinList
	details DetailsSource
	watch   *domain.Watchlist
	render  *Renderer
	search  *debounce.Debouncer[string]

	outMu sync.Mutex // debounced renders come from the timer goroutine
}

// NewBrowser wires a coin list to a line-oriented terminal session.
// Free-text input is applied as a search filter after searchDelay of quiet.
func NewBrowser(in io.Reader, out io.Writer, list *engine.CoinList, details DetailsSource, watch *domain.Watchlist, searchDelay time.Duration) *Browser {
	b := &Browser{
		in:      in,
		out:     out,
		list:    list,
		details: details,
		watch:   watch,
		render:  NewRenderer(out, watch).WithCommandHints(),
	}
	b.search = debounce.New("", searchDelay, func(q string) {
		b.list.Search(q)
		b.show()
	})
	return b
}

// Run loads the first page and processes commands until :quit, EOF or ctx is done.
func (b *Browser) Run(ctx context.Context) error {
	defer b.search.Stop()

	_ = b.list.Load(ctx) // failure is shown through the error state
	b.show()
	b.println(`Type :help for commands.`)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(b.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := b.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle executes one input line and reports whether the session should end.
func (b *Browser) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		b.search.Set(strings.TrimSpace(line))
		return false
	}

	cmd, arg, _ := strings.Cut(strings.TrimSpace(line[1:]), " ")
	arg = strings.TrimSpace(arg)
	slog.Debug("browse command", slog.String("cmd", cmd), slog.String("arg", arg))

	switch cmd {
	case "q", "quit", "exit":
		return true
	case "more":
		before := b.list.State()
		if before.Loading || !before.HasMore {
			b.println("No more pages.")
			return false
		}
		_ = b.list.LoadMore(ctx)
		b.show()
	case "sort":
		field, err := domain.ParseSortField(arg)
		if err != nil {
			b.println(err.Error())
			return false
		}
		_ = b.list.Sort(ctx, b.list.State().Sort.Toggle(field))
		b.show()
	case "retry":
		_ = b.list.Retry(ctx)
		b.show()
	case "star":
		if arg == "" {
			b.println("usage: :star <id>")
			return false
		}
		if b.watch.Toggle(arg) {
			b.println("★ added " + arg)
		} else {
			b.println("☆ removed " + arg)
		}
		b.show()
	case "show":
		b.showDetails(ctx, arg)
	case "help", "h", "?":
		b.println(browseHelp)
	default:
		b.println(fmt.Sprintf("unknown command %q, type :help", cmd))
	}
	return false
}

func (b *Browser) showDetails(ctx context.Context, id string) {
	if id == "" {
		b.println("usage: :show <id>")
		return
	}
	d, err := b.details.GetCoinDetails(ctx, id, b.list.State().Currency)

	b.outMu.Lock()
	defer b.outMu.Unlock()
	if err != nil {
		errorColor.Fprintf(b.out, "Error: %s\n", err)
		return
	}
	b.render.Details(d)
}

func (b *Browser) show() {
	b.outMu.Lock()
	defer b.outMu.Unlock()
	b.render.Coins(b.list.State())
}

func (b *Browser) println(s string) {
	b.outMu.Lock()
	defer b.outMu.Unlock()
	fmt.Fprintln(b.out, s)
}
