// Package terminal is the interactive operator surface. It drives exactly one
// order session and holds no pricing state of its own: every number the
// operator types is resolved to a stable identifier before the core is called.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/ecomarket/ecopos/internal/domain/session"
	"github.com/ecomarket/ecopos/pkg/health"
)

// Metrics holds the optional checkout counters. Nil counters are skipped.
type Metrics struct {
	Checkouts   metric.Int64Counter
	LogFailures metric.Int64Counter
}

// Terminal reads operator commands line by line and renders results.
type Terminal struct {
	sess    *session.Session
	health  *health.Service
	metrics Metrics
	lg      *zap.Logger
}

// New creates a Terminal over the given session.
func New(sess *session.Session, healthSvc *health.Service, metrics Metrics, lg *zap.Logger) *Terminal {
	return &Terminal{
		sess:    sess,
		health:  healthSvc,
		metrics: metrics,
		lg:      lg,
	}
}

// Run processes commands from in until EOF, "quit", or context cancellation.
// Domain errors are displayed and never end the loop.
func (t *Terminal) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "%s POS terminal. Type 'help' for commands.\n", t.sess.BusinessName())
	t.printFranchises(out)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nSession closed.")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := t.dispatch(ctx, out, line); quit {
				return nil
			}
		}
	}
}

// dispatch handles one command line. It returns true when the operator quits.
func (t *Terminal) dispatch(ctx context.Context, out io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		t.printHelp(out)
	case "stores":
		t.printFranchises(out)
	case "store":
		t.selectFranchise(out, args)
	case "menus":
		t.printMenus(out)
	case "menu":
		t.selectMenu(out, args)
	case "items":
		t.printItems(out)
	case "add":
		t.addItem(out, args)
	case "remove":
		t.removeLine(out, args)
	case "cart":
		t.printCart(out)
	case "clear":
		t.sess.ClearCart()
		fmt.Fprintln(out, "Cart cleared.")
	case "total":
		fmt.Fprintf(out, "TOTAL: $%s\n", t.sess.Total().StringFixed(2))
	case "checkout":
		t.checkout(ctx, out)
	case "status":
		t.printStatus(out)
	case "quit", "exit":
		fmt.Fprintln(out, "Goodbye.")
		return true
	default:
		fmt.Fprintf(out, "Unknown command %q. Type 'help'.\n", cmd)
	}
	return false
}

func (t *Terminal) printHelp(out io.Writer) {
	fmt.Fprint(out, `Commands:
  stores        list franchise locations
  store <n>     select a franchise
  menus         list the selected franchise's menus
  menu <n>      activate a menu
  items         list the active menu's items
  add <n|name>  add an item to the cart
  cart          show cart lines
  remove <n>    remove one cart line
  clear         empty the cart
  total         show the running total
  checkout      finalize the sale and print the receipt
  status        show system health
  quit          leave
`)
}

func (t *Terminal) printFranchises(out io.Writer) {
	fmt.Fprintln(out, "Franchise locations:")
	for i, f := range t.sess.Franchises() {
		label := f.Address
		if f.IsMall {
			label += " [mall pricing]"
		}
		fmt.Fprintf(out, "  %d. %s\n", i+1, label)
	}
}

func (t *Terminal) selectFranchise(out io.Writer, args []string) {
	franchises := t.sess.Franchises()
	idx, ok := parseIndex(out, args, len(franchises))
	if !ok {
		return
	}
	f := franchises[idx]
	if err := t.sess.SelectFranchise(f.ID); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	t.lg.Info("franchise selected", zap.String("franchise_id", f.ID), zap.String("address", f.Address))
	fmt.Fprintf(out, "Selected %s. Pick a menu:\n", f.Address)
	t.printMenus(out)
}

func (t *Terminal) printMenus(out io.Writer) {
	menus, err := t.sess.Menus()
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	for i, m := range menus {
		fmt.Fprintf(out, "  %d. %s (%s-%s)\n", i+1, m.Name, m.StartTime, m.EndTime)
	}
}

func (t *Terminal) selectMenu(out io.Writer, args []string) {
	menus, err := t.sess.Menus()
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	idx, ok := parseIndex(out, args, len(menus))
	if !ok {
		return
	}
	m := menus[idx]
	if err := t.sess.SelectMenu(m.ID); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	t.lg.Info("menu selected", zap.String("menu_id", m.ID), zap.String("menu", m.Name))
	fmt.Fprintf(out, "Active menu: %s\n", m.Name)
	t.printItems(out)
}

func (t *Terminal) printItems(out io.Writer) {
	items, err := t.sess.Items()
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	for i, item := range items {
		fmt.Fprintf(out, "  %d. %-25s $%s\n", i+1, item.Name, item.Price.StringFixed(2))
	}
}

func (t *Terminal) addItem(out io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(out, "usage: add <n|name>")
		return
	}

	name := strings.Join(args, " ")
	if idx, err := strconv.Atoi(args[0]); err == nil && len(args) == 1 {
		items, ierr := t.sess.Items()
		if ierr != nil {
			fmt.Fprintf(out, "error: %v\n", ierr)
			return
		}
		if idx < 1 || idx > len(items) {
			fmt.Fprintf(out, "error: no item %d\n", idx)
			return
		}
		name = items[idx-1].Name
	}

	line, err := t.sess.AddItem(name)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	t.lg.Debug("item added", zap.String("line_id", line.ID), zap.String("item", line.Name))
	fmt.Fprintf(out, "Added %s. TOTAL: $%s\n", line.Name, t.sess.Total().StringFixed(2))
}

func (t *Terminal) removeLine(out io.Writer, args []string) {
	cart := t.sess.Lines()
	idx, ok := parseIndex(out, args, len(cart))
	if !ok {
		return
	}
	if err := t.sess.RemoveLine(cart[idx].ID); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Removed %s. TOTAL: $%s\n", cart[idx].Name, t.sess.Total().StringFixed(2))
}

func (t *Terminal) printCart(out io.Writer) {
	cart := t.sess.Lines()
	if len(cart) == 0 {
		fmt.Fprintln(out, "Cart is empty.")
		return
	}
	m := t.sess.Menu()
	for i, l := range cart {
		price := "?"
		if m != nil {
			if p, ok := m.Price(l.Name); ok {
				price = p.StringFixed(2)
			}
		}
		fmt.Fprintf(out, "  %d. %-25s $%s\n", i+1, l.Name, price)
	}
	fmt.Fprintf(out, "TOTAL: $%s\n", t.sess.Total().StringFixed(2))
}

func (t *Terminal) checkout(ctx context.Context, out io.Writer) {
	result, err := t.sess.Checkout(ctx)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	if t.metrics.Checkouts != nil {
		t.metrics.Checkouts.Add(ctx, 1)
	}

	fmt.Fprintln(out, "Payment successful.")
	fmt.Fprint(out, result.Receipt.Render())

	if result.LogWarning != nil {
		if t.metrics.LogFailures != nil {
			t.metrics.LogFailures.Add(ctx, 1)
		}
		t.lg.Warn("receipt not persisted", zap.Error(result.LogWarning))
		fmt.Fprintf(out, "warning: receipt was not written to the transaction log: %v\n", result.LogWarning)
	}

	t.lg.Info("checkout completed",
		zap.String("receipt_id", result.Receipt.ID),
		zap.String("store", result.Receipt.Store),
		zap.String("total", result.Receipt.Total.StringFixed(2)),
	)
}

func (t *Terminal) printStatus(out io.Writer) {
	if t.health == nil {
		fmt.Fprintln(out, "No health checks configured.")
		return
	}
	for _, st := range t.health.Statuses() {
		state := "ok"
		if !st.Healthy {
			state = fmt.Sprintf("UNHEALTHY: %v", st.Err)
		}
		fmt.Fprintf(out, "  %-20s %s\n", st.Name, state)
	}
}

// parseIndex reads a single 1-based index argument bounded by n.
func parseIndex(out io.Writer, args []string, n int) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: <command> <n>")
		return 0, false
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 1 || idx > n {
		fmt.Fprintf(out, "error: no entry %s\n", args[0])
		return 0, false
	}
	return idx - 1, true
}
