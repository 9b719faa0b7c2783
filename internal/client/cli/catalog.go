package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"golang.org/x/sync/errgroup"
)

// benchConcurrency caps the number of in-flight requests of the bench command.
const benchConcurrency = 16

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// Products lists the catalog, optionally filtered by a search phrase.
func (a *App) Products(ctx context.Context, args []string) error {
	list, err := a.catalog.ListProducts(ctx, models.ProductQuery{Search: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	if len(list.Products) == 0 {
		a.printf("No products found\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range list.Products {
		stock := strconv.Itoa(p.Stock)
		if !p.InStock() {
			stock = "sold out"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.EffectivePrice().StringFixed(2), stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if list.Total > 0 {
		a.printf("%d of %d products\n", len(list.Products), list.Total)
	}
	return nil
}

// Product shows one product.
func (a *App) Product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("product <id>")
	}
	p, err := a.catalog.GetProduct(ctx, args[0])
	if err != nil {
		return err
	}

	a.printf("%s (%s)\n", p.Name, p.ID)
	if p.DiscountPrice != nil && p.EffectivePrice().LessThan(p.Price) {
		a.printf("Price: %s (was %s)\n", p.EffectivePrice().StringFixed(2), p.Price.StringFixed(2))
	} else {
		a.printf("Price: %s\n", p.Price.StringFixed(2))
	}
	a.printf("Stock: %d\n", p.Stock)
	if p.Description != "" {
		a.printf("%s\n", p.Description)
	}
	return nil
}

// Get fetches any endpoint and prints the JSON response. The bearer token
// is sent whenever a session exists.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("get <path>")
	}

	var out any
	err := a.api.Do(ctx, args[0], client.Request{RequireAuth: a.isLoggedIn(ctx)}, &out)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	a.printf("%s\n", b)
	return nil
}

// Upload sends an image to the back-office upload endpoint.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("upload <file>")
	}
	url, err := a.uploads.UploadImage(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("Uploaded: %s\n", url)
	return nil
}

// Health probes the server now, ignoring the cached answer.
func (a *App) Health(ctx context.Context) error {
	a.health.Invalidate()
	if err := a.health.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return err
	}
	a.setMode(ctx, ModeOnline)
	a.printf("Server %s is reachable\n", a.api.BaseURL())
	return nil
}

// Bench fires n concurrent GET requests at path and reports the outcome.
// With an expired session all of them share a single refresh.
func (a *App) Bench(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("bench <n> <path>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return usage("bench <n> <path>, n must be a positive number")
	}
	path := args[1]
	requireAuth := a.isLoggedIn(ctx)

	var ok, failed atomic.Int32
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(benchConcurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			err := a.api.Do(gctx, path, client.Request{RequireAuth: requireAuth}, nil)
			if err != nil {
				failed.Add(1)
				a.log.Debug(gctx, "bench request failed", "error", err)
				if errors.Is(err, client.ErrAccountSuspended) || errors.Is(err, client.ErrSessionExpired) {
					return err
				}
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	groupErr := g.Wait()

	a.printf("%d requests in %s: %d ok, %d failed\n", n, time.Since(start).Round(time.Millisecond), ok.Load(), failed.Load())
	return groupErr
}
