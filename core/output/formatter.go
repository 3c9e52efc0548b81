// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"isp-billing/core/engine"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is a human-readable terminal layout
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// ParseFormat resolves a --format value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText, "cli":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", errors.Newf(errors.TypeInput, "unknown output format %q (want text, json or markdown)", s)
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is what a command produces. Only the sections the command
// computed are set.
type Report struct {
	Usage          *types.AggregatedUsage   `json:"usage,omitempty"`
	Recommendation *types.Recommendation    `json:"recommendation,omitempty"`
	Cost           *types.MonthlyCost       `json:"cost,omitempty"`
	Evaluation     *engine.Result           `json:"evaluation,omitempty"`
	Plans          []types.SubscriptionPlan `json:"plans,omitempty"`
	Warnings       []types.Warning          `json:"warnings,omitempty"`
	Metadata       Metadata                 `json:"metadata"`
}

// Metadata contains execution context
type Metadata struct {
	// InputHash is a hash of the evaluated input
	InputHash string `json:"input_hash,omitempty"`

	// Currency is the display currency of all amounts
	Currency types.Currency `json:"currency"`

	// Version is the tool version
	Version string `json:"version,omitempty"`
}

// AllWarnings returns the report's warnings plus those carried by its
// sections, without duplicates, in first-seen order.
func (r *Report) AllWarnings() []types.Warning {
	var all []types.Warning
	seen := make(map[types.Warning]bool)
	add := func(ws []types.Warning) {
		for _, w := range ws {
			if !seen[w] {
				seen[w] = true
				all = append(all, w)
			}
		}
	}
	add(r.Warnings)
	if r.Usage != nil {
		add(r.Usage.Warnings)
	}
	if r.Evaluation != nil {
		add(r.Evaluation.Warnings)
	}
	return all
}

// FormatterRegistry manages formatter registration
type FormatterRegistry interface {
	// Register adds a formatter to the registry
	Register(formatter Formatter) error

	// GetFormatter returns a formatter for a format type
	GetFormatter(format Format) (Formatter, bool)

	// GetAll returns all registered formatters
	GetAll() []Formatter
}

// Registry is the default FormatterRegistry
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding the text, JSON and markdown
// formatters
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	_ = r.Register(NewTextFormatter(opts))
	_ = r.Register(NewJSONFormatter())
	_ = r.Register(NewMarkdownFormatter(opts))
	return r
}

// Register adds a formatter; registering a format twice is an error
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeConfig, "formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// GetFormatter returns a formatter for a format type
func (r *Registry) GetFormatter(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// GetAll returns all registered formatters ordered by format name
func (r *Registry) GetAll() []Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Formatter, 0, len(r.formatters))
	for _, f := range r.formatters {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Format() < all[j].Format() })
	return all
}

// Options configures human-readable formatters
type Options struct {
	CurrencySymbol string
	NoColor        bool
	Verbosity      int
}

func (o Options) symbol() string {
	if o.CurrencySymbol == "" {
		return "$"
	}
	return o.CurrencySymbol
}

// Money formats an amount with two decimals, sign before the symbol
func Money(amount decimal.Decimal, symbol string) string {
	if amount.IsNegative() {
		return "-" + symbol + amount.Neg().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// Rate formats a per-connection price keeping its significant decimals
func Rate(rate decimal.Decimal, symbol string) string {
	if rate.Exponent() >= -2 {
		return Money(rate, symbol)
	}
	return symbol + rate.String()
}

// Limit formats a connection limit
func Limit(p types.SubscriptionPlan) string {
	if p.IsUnlimited() {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *p.ConnectionLimit)
}

// PlanLabel is "Name (id)", or just the ID when the name repeats it
func PlanLabel(p types.SubscriptionPlan) string {
	if p.Name == "" || p.Name == p.ID {
		return p.ID
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}
