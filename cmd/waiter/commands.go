package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-orders/config"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/offline"
	"github.com/yeremiapane/restaurant-orders/utils"
)

type app struct {
	cfg    config.Waiter
	client *offline.HTTPClient
	store  *offline.GormStore
	queue  *offline.Queue
	log    *logrus.Logger
	out    io.Writer
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("waiter", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "waiter.yaml", "config file")
	if err := global.Parse(args); err != nil || global.NArg() == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	cfg, err := config.LoadWaiter(*configPath)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, out)
	if err != nil {
		return err
	}
	defer a.store.Close()

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "menu":
		return a.menu(ctx)
	case "order":
		return a.order(ctx, rest)
	case "queue":
		return a.showQueue()
	case "sync":
		return a.sync(ctx)
	case "watch":
		return a.watch(ctx)
	case "drop":
		if len(rest) != 1 {
			return errors.New("drop needs exactly one queued order id")
		}
		return a.queue.Remove(ctx, rest[0])
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newApp(cfg config.Waiter, out io.Writer) (*app, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	store, err := offline.OpenGormStore(cfg.QueueDB)
	if err != nil {
		return nil, err
	}

	client := offline.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	queue, err := offline.NewQueue(store, client, offline.WithLogger(log))
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{cfg: cfg, client: client, store: store, queue: queue, log: log, out: out}, nil
}

func (a *app) menu(ctx context.Context) error {
	products, err := a.client.ListProducts(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, utils.FormatCurrency(p.Price))
	}
	return w.Flush()
}

func (a *app) order(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dropConflicts := fs.Bool("drop-conflicts", false, "resubmit without the products that ran out")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := parseLines(fs.Args())
	if err != nil {
		return err
	}

	for {
		res := a.client.Submit(ctx, items)
		switch res.Outcome {
		case offline.OutcomeAccepted:
			if res.Order == nil {
				fmt.Fprintln(a.out, "order committed")
				return nil
			}
			return printReceipt(a.out, res.Order)

		case offline.OutcomeNetworkError:
			queued, err := a.queue.Enqueue(ctx, items)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "server unreachable, order queued as %s\n", queued.ID)
			return nil

		case offline.OutcomeConflict:
			printDiagnostics(a.out, res.Diagnostics)
			if !*dropConflicts {
				return errors.New("order rejected: insufficient stock")
			}
			items = offline.WithoutConflicting(items, res.Diagnostics)
			if len(items) == 0 {
				return errors.New("nothing left to order")
			}
			fmt.Fprintf(a.out, "retrying with %d remaining line(s)\n", len(items))

		default:
			return fmt.Errorf("order rejected: %w", res.Err)
		}
	}
}

func (a *app) showQueue() error {
	orders := a.queue.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "queue is empty")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUEUED AT\tSTATUS\tLINES\tLAST ERROR")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Local().Format("15:04:05"), o.Status, formatLines(o.Items), o.LastError)
	}
	return w.Flush()
}

func (a *app) sync(ctx context.Context) error {
	report, err := a.queue.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "sent %d: %d accepted, %d out of stock, %d failed, %d still offline\n",
		report.Attempted, report.Accepted, report.Conflicts, report.Failed, report.Deferred)
	a.printSyncErrors()
	return nil
}

func (a *app) watch(ctx context.Context) error {
	m := offline.NewMonitor(a.queue, a.client, a.cfg.ProbeInterval, a.cfg.MaxProbeDelay, a.log)
	m.OnChange = func(online bool) {
		if online {
			fmt.Fprintln(a.out, "online")
			return
		}
		fmt.Fprintln(a.out, "offline")
	}

	m.Start(ctx)
	<-ctx.Done()
	m.Stop()

	a.printSyncErrors()
	return nil
}

func (a *app) printSyncErrors() {
	for _, se := range a.queue.SyncErrors() {
		fmt.Fprintf(a.out, "queued order %s (%s) was dropped:\n", se.OrderID, formatLines(se.Items))
		printDiagnostics(a.out, se.Errors)
	}
	a.queue.ClearSyncErrors()
}

func printReceipt(out io.Writer, order *models.Order) error {
	fmt.Fprintf(out, "order %s committed, %d item(s), total %s\n",
		order.Reference(), order.ItemCount(), utils.FormatCurrency(order.TotalPrice))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, item := range order.Items {
		fmt.Fprintf(w, "  %d x #%d\t%s\t%s\n", item.Quantity, item.ProductID,
			utils.FormatCurrency(item.PriceAtPurchase), utils.FormatCurrency(item.Subtotal()))
	}
	return w.Flush()
}

func printDiagnostics(out io.Writer, diagnostics []models.StockDiagnostic) {
	for _, d := range diagnostics {
		names := make([]string, 0, len(d.AffectedProducts))
		for _, p := range d.AffectedProducts {
			names = append(names, p.Name)
		}
		fmt.Fprintf(out, "  %s: need %d, have %d (%s)\n", d.IngredientName, d.Required, d.Available, strings.Join(names, ", "))
	}
}

// parseLines reads PRODUCT_ID:QUANTITY arguments. A bare id means quantity 1.
func parseLines(args []string) ([]models.LineItem, error) {
	if len(args) == 0 {
		return nil, errors.New("order needs at least one PRODUCT_ID:QUANTITY")
	}

	items := make([]models.LineItem, 0, len(args))
	for _, arg := range args {
		idPart, qtyPart, hasQty := strings.Cut(arg, ":")
		id, err := strconv.ParseUint(idPart, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("bad product id in %q", arg)
		}
		qty := 1
		if hasQty {
			qty, err = strconv.Atoi(qtyPart)
			if err != nil || qty <= 0 {
				return nil, fmt.Errorf("bad quantity in %q", arg)
			}
		}
		items = append(items, models.LineItem{ProductID: uint(id), Quantity: qty})
	}
	return items, nil
}

func formatLines(items []models.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%d:%d", it.ProductID, it.Quantity))
	}
	return strings.Join(parts, " ")
}
