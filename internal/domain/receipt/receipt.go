// Package receipt models the immutable record of a completed checkout and its
// rendering into the transaction log format.
package receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timeLayout is the Date line format in the transaction log.
const timeLayout = "2006-01-02 15:04:05"

// nameWidth is the left-justified item name column width.
const nameWidth = 25

// LineItem is one charged cart line on a receipt.
type LineItem struct {
	Name  string
	Price decimal.Decimal
}

// Receipt is the record of a completed checkout. Built once, never mutated.
type Receipt struct {
	ID        string
	Timestamp time.Time
	Store     string
	Lines     []LineItem
	Total     decimal.Decimal
}

// Sink persists rendered receipt entries. Implementations must append, never
// overwrite, and must write a whole entry atomically so two receipts' lines
// cannot interleave.
type Sink interface {
	Append(ctx context.Context, entry string) error
}

// Render produces the fixed textual layout appended to the transaction log:
// a title line, the timestamp and store lines, a dashed block of item lines
// with right-aligned 2-decimal prices, the total, and a double-dashed close.
func (r *Receipt) Render() string {
	sep := strings.Repeat("-", nameWidth)

	var b strings.Builder
	b.WriteString("--- RECEIPT ---\n")
	fmt.Fprintf(&b, "Date:  %s\n", r.Timestamp.Format(timeLayout))
	fmt.Fprintf(&b, "Store: %s\n", r.Store)
	b.WriteString(sep + "\n")
	for _, line := range r.Lines {
		fmt.Fprintf(&b, "%-*s $%s\n", nameWidth, line.Name, line.Price.StringFixed(2))
	}
	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "TOTAL:                    $%s\n", r.Total.StringFixed(2))
	b.WriteString(strings.Repeat("=", nameWidth) + "\n")
	return b.String()
}
