// Package sim defines the discrete-time model of a mobile user equipment
// that either runs tasks on its local CPU or offloads them through a
// transmission unit (TU).
//
// # Reading Guide
//
// Start with these files:
//   - state.go: the (queue, TU, CPU) state and the (state, action) index
//   - action.go: scheduling actions and admissibility
//   - transitions.go: the elementary physical effects applied within a tick
//   - index.go: the mixed-radix codec between (state, action) pairs and LP variables
//
// # Architecture
//
// The sim package holds the shared vocabulary; the pipeline lives in
// sub-packages:
//   - sim/dtmc/: transition-probability chain with symbolic edge terms
//   - sim/lp/: linear program construction and simplex solve
//   - sim/sweep/: bounded parallel map used by the trade-off sweep
//   - sim/stochastic/: optimal stochastic policy search over eta
//   - sim/policy/: stochastic and baseline scheduling policies
//   - sim/simulator/: Monte-Carlo execution of a policy
//   - sim/evaluation/: arrival-rate sweep comparing policies
package sim
