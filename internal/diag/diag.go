// Package diag records non-fatal data losses (skipped taxa, dropped dump
// lines, merged names) so a run can be audited without aborting it.
package diag

import (
	"go.uber.org/zap"
)

// Diagnostic is one skipped or altered item and why.
type Diagnostic struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Collector accumulates diagnostics and logs each one at warn level.
// A nil logger records silently.
type Collector struct {
	log   *zap.Logger
	items []Diagnostic
}

// NewCollector returns a Collector that logs through log.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// Add records one diagnostic. Extra fields are only logged.
func (c *Collector) Add(id, reason string, fields ...zap.Field) {
	c.items = append(c.items, Diagnostic{ID: id, Reason: reason})
	c.log.Warn(reason, append([]zap.Field{zap.String("id", id)}, fields...)...)
}

// Items returns the recorded diagnostics in insertion order.
func (c *Collector) Items() []Diagnostic { return c.items }

// Len is the number of recorded diagnostics.
func (c *Collector) Len() int { return len(c.items) }

// CountByReason tallies diagnostics per reason.
func (c *Collector) CountByReason() map[string]int {
	m := make(map[string]int)
	for _, d := range c.items {
		m[d.Reason]++
	}
	return m
}
