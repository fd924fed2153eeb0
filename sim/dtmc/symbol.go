package dtmc

import (
	"fmt"
	"strings"

	"github.com/offload-sim/offload-sim/sim"
)

// SymbolKind tags one factor of a symbolic transition probability.
type SymbolKind int

const (
	Arrival        SymbolKind = iota // a task arrives (α)
	NoArrival                        // no task arrives (1-α)
	TUCompletion                     // the TU completes a packet (β)
	NoTUCompletion                   // the TU does not complete a packet (1-β)
	ActionTag                        // the transition was produced by Symbol.Action
)

// Symbol is a qualitative factor of a transition probability.
// Action is only meaningful for ActionTag symbols.
type Symbol struct {
	Kind   SymbolKind
	Action sim.Action
}

// Tag returns the ActionTag symbol for a.
func Tag(a sim.Action) Symbol {
	return Symbol{Kind: ActionTag, Action: a}
}

var (
	symArrival        = Symbol{Kind: Arrival}
	symNoArrival      = Symbol{Kind: NoArrival}
	symTUCompletion   = Symbol{Kind: TUCompletion}
	symNoTUCompletion = Symbol{Kind: NoTUCompletion}
)

func (s Symbol) String() string {
	switch s.Kind {
	case Arrival:
		return "α"
	case NoArrival:
		return "ᾱ"
	case TUCompletion:
		return "β"
	case NoTUCompletion:
		return "β̄"
	case ActionTag:
		return s.Action.String()
	default:
		return fmt.Sprintf("Symbol(%d)", int(s.Kind))
	}
}

// Value returns the numeric value of an event symbol under cfg.
// ActionTag symbols evaluate to 1; the action's weight is applied by the caller.
func (s Symbol) Value(cfg sim.Config) float64 {
	switch s.Kind {
	case Arrival:
		return cfg.Alpha
	case NoArrival:
		return 1 - cfg.Alpha
	case TUCompletion:
		return cfg.Beta
	case NoTUCompletion:
		return 1 - cfg.Beta
	default:
		return 1
	}
}

// Term is one additive term of a transition probability: the product of
// its symbols.
type Term []Symbol

// Coefficient is the product of the term's event symbols.
func (t Term) Coefficient(cfg sim.Config) float64 {
	p := 1.0
	for _, s := range t {
		p *= s.Value(cfg)
	}
	return p
}

// Action returns the action tag carried by the term.
// Panics when the term carries no tag.
func (t Term) Action() sim.Action {
	for _, s := range t {
		if s.Kind == ActionTag {
			return s.Action
		}
	}
	panic(fmt.Sprintf("term %s carries no action tag", t))
}

func (t Term) String() string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = s.String()
	}
	return strings.Join(parts, "·")
}

// Edge groups every term leading from one origin to Dest.
type Edge struct {
	Dest  sim.State
	Terms []Term
}

// ProbabilityGiven is P(Dest | origin, a): the sum of the coefficients of
// the terms tagged with a.
func (e Edge) ProbabilityGiven(a sim.Action, cfg sim.Config) float64 {
	p := 0.0
	for _, t := range e.Terms {
		if t.Action() == a {
			p += t.Coefficient(cfg)
		}
	}
	return p
}

// Probability is P(Dest | origin) when actions are drawn with the given
// weights.
func (e Edge) Probability(cfg sim.Config, weight func(sim.Action) float64) float64 {
	p := 0.0
	for _, t := range e.Terms {
		p += weight(t.Action()) * t.Coefficient(cfg)
	}
	return p
}
