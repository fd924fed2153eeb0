package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInconsistent is returned when a redundant equality contradicts the others.
	ErrInconsistent = errors.New("lp: inconsistent equality constraints")
	// ErrInfeasible is returned when no point satisfies the constraints.
	ErrInfeasible = errors.New("lp: problem is infeasible")
	// ErrUnbounded is returned when the objective decreases without bound.
	ErrUnbounded = errors.New("lp: problem is unbounded")
	// ErrIterationLimit is returned when the pivot budget runs out.
	ErrIterationLimit = errors.New("lp: iteration limit reached")
	// ErrSingularBasis is returned when a basis cannot be refactorized.
	ErrSingularBasis = errors.New("lp: singular basis")
)

// IsInfeasible reports whether err means the program has no feasible point.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrInfeasible) || errors.Is(err, ErrInconsistent)
}

// Solution is the optimum of a Program.
type Solution struct {
	Objective    float64
	Values       []float64 // len == Program.NumVariables, in variable-index order
	AverageDelay float64
	AveragePower float64
}

// Simplex is a two-phase dense tableau simplex. Linearly dependent rows,
// which the balance equations always contain, are removed first, and the
// search starts from Program.StartBasis when that basis is usable.
//
// High arrival rates make the programs very degenerate, so pivots use a
// Harris ratio test preferring the largest pivot element, entering columns
// fall back to Bland's rule on long degenerate runs, and the tableau is
// refactorized from the original rows at a fixed pivot interval.
type Simplex struct {
	Tolerance            float64 // optimality tolerance on reduced costs
	PivotTolerance       float64 // relative size below which a pivot element is ignored
	FeasibilityTolerance float64 // slack allowed in the ratio test and in phase one
	RankTolerance        float64 // residual norm below which a row is dependent

	// MaxIterations bounds the pivots of each phase. Zero means
	// 50 times the number of rows plus columns.
	MaxIterations int
}

// NewSimplex returns a Simplex with default tolerances.
func NewSimplex() *Simplex {
	return &Simplex{
		Tolerance:            1e-9,
		PivotTolerance:       1e-9,
		FeasibilityTolerance: 1e-9,
		RankTolerance:        1e-9,
	}
}

// Solve returns the optimum of p.
func (s *Simplex) Solve(p *Program) (Solution, error) {
	kept, err := independentRows(p.Rows, p.RHS, s.RankTolerance)
	if err != nil {
		return Solution{}, err
	}

	// Drop columns left empty by the row reduction (an unused slack).
	var cols []int
	position := make(map[int]int, len(p.Columns))
	for j := range p.Columns {
		for _, i := range kept {
			if p.Rows[i][j] != 0 {
				position[j] = len(cols)
				cols = append(cols, j)
				break
			}
		}
	}

	a := mat.NewDense(len(kept), len(cols), nil)
	b := make([]float64, len(kept))
	c := make([]float64, len(cols))
	for r, i := range kept {
		b[r] = p.RHS[i]
		for k, j := range cols {
			a.Set(r, k, p.Rows[i][j])
		}
	}
	for k, j := range cols {
		c[k] = p.Objective[j]
	}
	var hint []int
	for _, j := range p.StartBasis {
		if k, ok := position[j]; ok {
			hint = append(hint, k)
		}
	}

	x, err := s.solve(a, b, c, hint)
	if err != nil {
		return Solution{}, fmt.Errorf("simplex at eta=%g: %w", p.Eta, err)
	}

	columnValues := make([]float64, len(p.Columns))
	for k, j := range cols {
		columnValues[j] = x[k]
	}
	return Solution{
		Objective:    floats.Dot(c, x),
		Values:       p.Expand(columnValues),
		AverageDelay: floats.Dot(p.Delay, columnValues),
		AveragePower: floats.Dot(p.Energy, columnValues),
	}, nil
}

// solve minimizes c·x subject to a·x = b, x >= 0, for a with full row rank.
func (s *Simplex) solve(a *mat.Dense, b, c []float64, hint []int) ([]float64, error) {
	m, n := a.Dims()
	maxIterations := s.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 50 * (m + n)
	}

	basis, sign := startingBasis(a, b, hint)
	tab, err := newTableau(a, b, basis, sign, s)
	if err != nil {
		return nil, err
	}

	if hasArtificial(tab.basis, n) {
		phaseOne := make([]float64, n+m)
		for i := n; i < n+m; i++ {
			phaseOne[i] = 1
		}
		tab.setObjective(phaseOne)
		if err := tab.run(n, maxIterations); err != nil {
			return nil, fmt.Errorf("phase one: %w", err)
		}
		if err := tab.reinvert(); err != nil {
			return nil, err
		}
		if mass := tab.artificialMass(); mass > s.FeasibilityTolerance*math.Max(1, floats.Norm(b, 1)) {
			return nil, fmt.Errorf("%w: residual %g", ErrInfeasible, mass)
		}
		if err := tab.driveOutArtificials(); err != nil {
			return nil, err
		}
	}

	phaseTwo := make([]float64, n+m)
	copy(phaseTwo, c)
	tab.setObjective(phaseTwo)
	if err := tab.run(n, maxIterations); err != nil {
		return nil, err
	}
	if err := tab.reinvert(); err != nil {
		return nil, err
	}
	return tab.solution(), nil
}

func hasArtificial(basis []int, n int) bool {
	for _, j := range basis {
		if j >= n {
			return true
		}
	}
	return false
}

// startingBasis returns the hinted basis when it is square and nonsingular.
// Hinted unit columns that would take a negative value are swapped for a
// negated artificial on their row, which phase one then drives out. In any
// other case every row starts on its own artificial, signed so that the
// start is feasible. Artificial i is column n+i.
func startingBasis(a *mat.Dense, b []float64, hint []int) ([]int, []float64) {
	m, n := a.Dims()
	if len(hint) == m {
		if basis, sign, ok := hintedBasis(a, b, hint); ok {
			return basis, sign
		}
	}
	basis := make([]int, m)
	sign := make([]float64, m)
	for i := range basis {
		basis[i] = n + i
		sign[i] = 1
		if b[i] < 0 {
			sign[i] = -1
		}
	}
	return basis, sign
}

func hintedBasis(a *mat.Dense, b []float64, hint []int) ([]int, []float64, bool) {
	m, n := a.Dims()
	bm := mat.NewDense(m, m, nil)
	col := make([]float64, m)
	for k, j := range hint {
		mat.Col(col, j, a)
		bm.SetCol(k, col)
	}
	var lu mat.LU
	lu.Factorize(bm)
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, mat.NewVecDense(m, append([]float64(nil), b...))); err != nil {
		return nil, nil, false
	}

	basis := append([]int(nil), hint...)
	sign := make([]float64, m)
	for i := range sign {
		sign[i] = 1
	}
	for k, j := range hint {
		if x.AtVec(k) >= -1e-12 {
			continue
		}
		row, ok := unitRow(a, j)
		if !ok {
			return nil, nil, false
		}
		basis[k] = n + row
		sign[row] = -1
	}
	return basis, sign, true
}

// unitRow returns i when column j of a is the unit vector e_i.
func unitRow(a *mat.Dense, j int) (int, bool) {
	m, _ := a.Dims()
	row := -1
	for i := 0; i < m; i++ {
		switch v := a.At(i, j); {
		case v == 0:
		case v == 1 && row < 0:
			row = i
		default:
			return 0, false
		}
	}
	return row, row >= 0
}

// independentRows selects a maximal linearly independent subset of rows,
// in order, with modified Gram-Schmidt applied twice per row. A dependent
// row whose right-hand side disagrees with the combination of kept rows
// makes the system inconsistent.
func independentRows(rows [][]float64, rhs []float64, tol float64) ([]int, error) {
	var (
		kept     []int
		basis    [][]float64
		basisRHS []float64
	)
	for i, row := range rows {
		r := make([]float64, len(row))
		copy(r, row)
		bi := rhs[i]
		for pass := 0; pass < 2; pass++ {
			for k, q := range basis {
				coef := floats.Dot(r, q)
				floats.AddScaled(r, -coef, q)
				bi -= coef * basisRHS[k]
			}
		}
		scale := math.Max(1, floats.Norm(row, 2))
		norm := floats.Norm(r, 2)
		if norm <= tol*scale {
			if math.Abs(bi) > math.Sqrt(tol)*math.Max(1, math.Abs(rhs[i])) {
				return nil, fmt.Errorf("row %d: %w", i, ErrInconsistent)
			}
			continue
		}
		floats.Scale(1/norm, r)
		basis = append(basis, r)
		basisRHS = append(basisRHS, bi/norm)
		kept = append(kept, i)
	}
	return kept, nil
}
