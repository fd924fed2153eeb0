package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// degenerateStreak is the number of consecutive zero-length pivots
	// after which entering columns are chosen by smallest index.
	degenerateStreak = 8

	// reinvertEvery is the number of pivots between two refactorizations
	// of the basis from the original data.
	reinvertEvery = 32
)

// tableau is a dense simplex tableau over m rows, n structural columns and
// m artificial columns, with the right-hand side in the last column and the
// reduced costs in the last row. Artificial column i is sign[i]·e_i.
type tableau struct {
	m, n  int
	rhs   int        // index of the right-hand-side column
	orig  *mat.Dense // m x (n+m+1), the untransformed rows
	t     *mat.Dense // (m+1) x (n+m+1)
	basis []int
	cost  []float64 // per column of orig, without the rhs

	pivotTol float64
	optTol   float64
	feasTol  float64
	pivots   int
}

func newTableau(a *mat.Dense, b []float64, basis []int, sign []float64, s *Simplex) (*tableau, error) {
	m, n := a.Dims()
	width := n + m + 1
	orig := mat.NewDense(m, width, nil)
	orig.Slice(0, m, 0, n).(*mat.Dense).Copy(a)
	for i := 0; i < m; i++ {
		orig.Set(i, n+i, sign[i])
		orig.Set(i, width-1, b[i])
	}
	tab := &tableau{
		m:        m,
		n:        n,
		rhs:      width - 1,
		orig:     orig,
		t:        mat.NewDense(m+1, width, nil),
		basis:    append([]int(nil), basis...),
		cost:     make([]float64, n+m),
		pivotTol: s.PivotTolerance,
		optTol:   s.Tolerance,
		feasTol:  s.FeasibilityTolerance,
	}
	if err := tab.reinvert(); err != nil {
		return nil, err
	}
	return tab, nil
}

// reinvert rebuilds the tableau as B⁻¹·orig for the current basis B,
// discarding the round-off accumulated by pivoting.
func (tab *tableau) reinvert() error {
	b := mat.NewDense(tab.m, tab.m, nil)
	col := make([]float64, tab.m)
	for k, j := range tab.basis {
		mat.Col(col, j, tab.orig)
		b.SetCol(k, col)
	}
	var lu mat.LU
	lu.Factorize(b)
	var sol mat.Dense
	if err := lu.SolveTo(&sol, false, tab.orig); err != nil && singular(err) {
		return fmt.Errorf("%w: %v", ErrSingularBasis, err)
	}
	tab.t.Slice(0, tab.m, 0, tab.rhs+1).(*mat.Dense).Copy(&sol)
	for i := 0; i < tab.m; i++ {
		if tab.t.At(i, tab.rhs) < 0 {
			tab.t.Set(i, tab.rhs, 0)
		}
	}
	tab.setObjective(tab.cost)
	return nil
}

// setObjective installs cost and prices out the basic columns, leaving
// reduced costs in the last row and minus the objective value in its
// rhs cell.
func (tab *tableau) setObjective(cost []float64) {
	tab.cost = cost
	obj := tab.t.RawRowView(tab.m)
	copy(obj, cost)
	obj[tab.rhs] = 0
	for i, j := range tab.basis {
		if cb := cost[j]; cb != 0 {
			floats.AddScaled(obj, -cb, tab.t.RawRowView(i))
		}
	}
}

// singular reports whether err from an LU solve means the factor has an
// exact zero pivot. A finite condition number is only a warning.
func singular(err error) bool {
	var cond mat.Condition
	return !errors.As(err, &cond) || math.IsInf(float64(cond), 1)
}

func (tab *tableau) value(i int) float64 {
	return tab.t.At(i, tab.rhs)
}

// entering returns the column among the first limit with the most
// negative reduced cost, or the first negative one when bland is set.
// Returns -1 at optimality.
func (tab *tableau) entering(limit int, bland bool) int {
	obj := tab.t.RawRowView(tab.m)
	best, bestCost := -1, -tab.optTol
	for j := 0; j < limit; j++ {
		if obj[j] < bestCost {
			if bland {
				return j
			}
			best, bestCost = j, obj[j]
		}
	}
	return best
}

// leaving runs a two-pass Harris ratio test on column j: among rows whose
// ratio is within the feasibility tolerance of the minimum, the largest
// pivot element wins. Returns -1 when the column is unbounded.
func (tab *tableau) leaving(j int) (row int, step float64) {
	colMax := 0.0
	for i := 0; i < tab.m; i++ {
		colMax = math.Max(colMax, math.Abs(tab.t.At(i, j)))
	}
	tol := tab.pivotTol * math.Max(1, colMax)

	theta := math.Inf(1)
	for i := 0; i < tab.m; i++ {
		if a := tab.t.At(i, j); a > tol {
			theta = math.Min(theta, (tab.value(i)+tab.feasTol)/a)
		}
	}
	if math.IsInf(theta, 1) {
		return -1, 0
	}

	row, pivot := -1, 0.0
	for i := 0; i < tab.m; i++ {
		a := tab.t.At(i, j)
		if a <= tol || tab.value(i)/a > theta {
			continue
		}
		if a > pivot {
			row, pivot = i, a
		}
	}
	return row, tab.value(row) / pivot
}

// pivot makes column c basic in row r.
func (tab *tableau) pivot(r, c int) error {
	prow := tab.t.RawRowView(r)
	floats.Scale(1/prow[c], prow)
	prow[c] = 1
	for i := 0; i <= tab.m; i++ {
		if i == r {
			continue
		}
		row := tab.t.RawRowView(i)
		f := row[c]
		if f == 0 {
			continue
		}
		floats.AddScaled(row, -f, prow)
		row[c] = 0
		if i < tab.m && row[tab.rhs] < 0 {
			row[tab.rhs] = 0
		}
	}
	tab.basis[r] = c
	tab.pivots++
	if tab.pivots%reinvertEvery == 0 {
		return tab.reinvert()
	}
	return nil
}

// run pivots until no column among the first limit prices out negative.
func (tab *tableau) run(limit, maxIterations int) error {
	bland, streak := false, 0
	for iter := 0; iter < maxIterations; iter++ {
		j := tab.entering(limit, bland)
		if j < 0 {
			return nil
		}
		i, step := tab.leaving(j)
		if i < 0 {
			return ErrUnbounded
		}
		if step <= tab.feasTol {
			streak++
			bland = streak >= degenerateStreak
		} else {
			streak, bland = 0, false
		}
		if err := tab.pivot(i, j); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d pivots", ErrIterationLimit, tab.pivots)
}

// artificialMass is the total value of the basic artificial columns.
func (tab *tableau) artificialMass() float64 {
	mass := 0.0
	for i, j := range tab.basis {
		if j >= tab.n {
			mass += tab.value(i)
		}
	}
	return mass
}

// driveOutArtificials replaces zero-valued basic artificials by structural
// columns. Rows with no structural entry are redundant; their artificial
// stays basic at zero and never limits a step.
func (tab *tableau) driveOutArtificials() error {
	for i, j := range tab.basis {
		if j < tab.n {
			continue
		}
		row := tab.t.RawRowView(i)
		best, bestAbs := -1, tab.pivotTol
		for k := 0; k < tab.n; k++ {
			if a := math.Abs(row[k]); a > bestAbs {
				best, bestAbs = k, a
			}
		}
		if best < 0 {
			continue
		}
		row[tab.rhs] = 0
		if err := tab.pivot(i, best); err != nil {
			return err
		}
	}
	return nil
}

// solution returns the structural values of the current basis.
func (tab *tableau) solution() []float64 {
	x := make([]float64, tab.n)
	for i, j := range tab.basis {
		if j < tab.n {
			x[j] = math.Max(tab.value(i), 0)
		}
	}
	return x
}
