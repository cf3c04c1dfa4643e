// Command storefront browses the tour catalogue and books tours from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/tazabekov/tour-booking-room-2/internal/catalog"
	"github.com/tazabekov/tour-booking-room-2/internal/client"
	"github.com/tazabekov/tour-booking-room-2/internal/lifecycle"
	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

const usage = `usage: storefront [-api URL | -offline] [-v] <command> [flags]

commands:
  tours   list tours, optionally filtered by country, price range and search text
  book    book a tour
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run parses global flags and dispatches a subcommand. repo overrides the
// repository chosen by flags when non-nil.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, repo client.Repository) error {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	apiURL := fs.String("api", envOr("TOURS_API_URL", client.DefaultBaseURL), "catalogue API base URL")
	offline := fs.Bool("offline", false, "use the built-in sample catalogue")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if repo == nil {
		if *offline {
			repo = client.NewStaticClient(client.SampleTours())
		} else {
			repo = client.NewHTTPClient(*apiURL)
		}
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("no command given")
	}

	switch rest[0] {
	case "tours":
		return runTours(ctx, rest[1:], stdout, stderr, repo, logger)
	case "book":
		return runBook(ctx, rest[1:], stdout, stderr, repo, logger)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func runTours(ctx context.Context, args []string, stdout, stderr io.Writer, repo client.Repository, logger *slog.Logger) error {
	fs := flag.NewFlagSet("tours", flag.ContinueOnError)
	fs.SetOutput(stderr)
	country := fs.String("country", models.AnyCountry, "exact country name")
	minPrice := fs.String("min", "", "lowest price (inclusive)")
	maxPrice := fs.String("max", "", "highest price (inclusive)")
	search := fs.String("q", "", "search title, country, city and description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts, err := repo.GetFilterOptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load filter options: %w", err)
	}

	criteria := catalog.DefaultCriteria(*opts)
	criteria.Country = *country
	criteria.SearchQuery = *search
	if criteria.PriceRange.Low, err = priceFlag(*minPrice, criteria.PriceRange.Low); err != nil {
		return fmt.Errorf("invalid -min: %w", err)
	}
	if criteria.PriceRange.High, err = priceFlag(*maxPrice, criteria.PriceRange.High); err != nil {
		return fmt.Errorf("invalid -max: %w", err)
	}
	// A single bound outside the catalogue moves the defaulted one with it.
	switch pr := &criteria.PriceRange; {
	case *maxPrice == "" && pr.Low.GreaterThan(pr.High):
		pr.High = pr.Low
	case *minPrice == "" && pr.High.LessThan(pr.Low):
		pr.Low = pr.High
	}

	cat := catalog.New(repo, catalog.WithLogger(logger))
	snap, _, err := cat.Refresh(ctx, criteria)
	if err != nil {
		return err
	}

	if len(snap.Tours) == 0 {
		fmt.Fprintln(stdout, "No tours match these filters.")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOUNTRY\tCITY\tPRICE\tSLOTS")
	for _, t := range snap.Tours {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d/%d\n",
			t.ID, t.Title, t.Country, t.City, t.Price.StringFixed(2), t.AvailableSlots, t.MaxPeople)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d of %d tours\n", len(snap.Tours), snap.ServerTotal)
	return nil
}

func runBook(ctx context.Context, args []string, stdout, stderr io.Writer, repo client.Repository, logger *slog.Logger) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tourID := fs.Int64("tour", 0, "tour id")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	travelers := fs.Int("travelers", 1, "number of travelers")
	notes := fs.String("notes", "", "anything we should know")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tourID <= 0 {
		return errors.New("-tour is required")
	}

	tour, err := repo.GetTourByID(ctx, *tourID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("tour %d not found", *tourID)
		}
		return err
	}

	m := lifecycle.NewManager(repo, *tour,
		lifecycle.WithLogger(logger),
		lifecycle.WithTransitionHook(func(from, to lifecycle.State) {
			logger.Debug("booking state", "from", from, "to", to)
		}),
	)
	defer m.Abandon()

	err = m.Edit(func(d *models.BookingDraft) {
		d.CustomerName = *name
		d.CustomerEmail = *email
		d.CustomerPhone = *phone
		d.Travelers = *travelers
		d.Notes = *notes
	})
	if err != nil {
		return err
	}

	if total, err := m.Total(); err == nil {
		fmt.Fprintf(stdout, "%s: %d x %s = %s\n", tour.Title, *travelers, tour.Price.StringFixed(2), total.StringFixed(2))
	}

	snap := m.Submit(ctx)
	switch snap.State {
	case lifecycle.StateConfirmed:
		b := snap.Result
		fmt.Fprintf(stdout, "Booking #%d confirmed for %s (%d travelers, total %s)\n",
			b.ID, b.CustomerName, b.NumberOfPeople, b.TotalPrice.StringFixed(2))
		return nil
	case lifecycle.StateFailed:
		return errors.New(snap.Failure)
	default:
		var lines []string
		for _, f := range snap.Errors.Fields() {
			lines = append(lines, fmt.Sprintf("  %s: %s", f, snap.Errors[f]))
		}
		fmt.Fprintln(stdout, "Please fix the following:")
		fmt.Fprintln(stdout, strings.Join(lines, "\n"))
		return errors.New("booking not submitted")
	}
}

func priceFlag(s string, def decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return def, nil
	}
	return decimal.NewFromString(s)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
