// Package engine implements the recurrence and cash-flow forecast core:
// expanding recurrence rules into schedules, managing occurrence
// lifecycles, normalizing obligation sources and projecting balances.
package engine

import (
	"github.com/sirupsen/logrus"
)

// DefaultHorizonMonths is how far ahead occurrences are materialized for
// rules that never end. The rolling horizon is advanced by the daily
// scheduler job and by explicit materialize calls.
const DefaultHorizonMonths = 12

// Engine ties the pure core logic to a persistence collaborator.
type Engine struct {
	store         Store
	log           *logrus.Logger
	horizonMonths int
}

// New initializes an engine. horizonMonths <= 0 falls back to the default.
func New(store Store, log *logrus.Logger, horizonMonths int) *Engine {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	return &Engine{store: store, log: log, horizonMonths: horizonMonths}
}
