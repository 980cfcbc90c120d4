// Package solver integrates the ordinary differential equations of a bond
// graph. The assignment-form equation system is ordered once by data
// dependency; each derivative evaluation then runs the assignments in that
// order over the current state.
package solver

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bondgraph-xyz/go-bondgraph/equation"
	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

// ErrAlgebraicLoop is returned when the assignments contain a dependency
// cycle, so no evaluation order exists. Graphs with fallback causality marks
// produce such systems.
var ErrAlgebraicLoop = errors.New("assignments form an algebraic loop")

// Problem is an initial value problem derived from an equation system.
type Problem struct {
	System *equation.System
	Tspan  [2]float64 // [t0, tf]

	ordered []equation.Assignment // assignments in evaluation order
	states  []equation.State
	u0      []float64
	labels  []string // state names, ordered as u0
}

// NewProblem orders the system's assignments by data dependency and packs
// the initial state. Returns ErrAlgebraicLoop when no order exists.
func NewProblem(sys *equation.System, tspan [2]float64) (*Problem, error) {
	ordered, err := orderAssignments(sys)
	if err != nil {
		return nil, err
	}
	p := &Problem{
		System:  sys,
		Tspan:   tspan,
		ordered: ordered,
		states:  sys.States,
	}
	for _, st := range sys.States {
		p.labels = append(p.labels, st.Name)
		p.u0 = append(p.u0, st.Initial)
	}
	return p, nil
}

// orderAssignments topologically sorts the assignments: an assignment
// depends on every variable of its right-hand side that is itself the
// target of another assignment. State variables and time are always known.
func orderAssignments(sys *equation.System) ([]equation.Assignment, error) {
	byTarget := make(map[string]int, len(sys.Assignments))
	for i, a := range sys.Assignments {
		byTarget[a.Target] = i
	}
	isState := make(map[string]bool, len(sys.States))
	for _, st := range sys.States {
		isState[st.Name] = true
	}

	n := len(sys.Assignments)
	dependents := make([][]int, n) // dependents[j] = assignments that need j first
	indegree := make([]int, n)
	for i, a := range sys.Assignments {
		for _, v := range expr.Vars(a.RHS) {
			if isState[v] {
				continue
			}
			j, ok := byTarget[v]
			if !ok || j == i {
				continue
			}
			dependents[j] = append(dependents[j], i)
			indegree[i]++
		}
	}

	var queue []int
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	ordered := make([]equation.Assignment, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, sys.Assignments[i])
		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	if len(ordered) < n {
		var cyclic []string
		for i := 0; i < n; i++ {
			if indegree[i] > 0 {
				cyclic = append(cyclic, sys.Assignments[i].Target)
			}
		}
		sort.Strings(cyclic)
		return nil, fmt.Errorf("%w: %s", ErrAlgebraicLoop, strings.Join(cyclic, ", "))
	}
	return ordered, nil
}

// eval runs the ordered assignments at time t over the packed state u and
// returns the full variable environment.
func (p *Problem) eval(t float64, u []float64) map[string]float64 {
	env := make(map[string]float64, len(p.System.Variables))
	for i, label := range p.labels {
		env[label] = u[i]
	}
	for _, a := range p.ordered {
		env[a.Target] = a.RHS.Eval(t, env)
	}
	return env
}

// derivatives computes du/dt at time t for the packed state u.
func (p *Problem) derivatives(t float64, u []float64) []float64 {
	env := p.eval(t, u)
	du := make([]float64, len(p.states))
	for i, st := range p.states {
		du[i] = env[st.Deriv]
	}
	return du
}

// Solution is the trajectory of an integrated problem. Each entry of U holds
// every bond variable and state at the corresponding time point.
type Solution struct {
	T           []float64
	U           []map[string]float64
	StateLabels []string // state variable names, integration order
}

// GetVariable extracts the time series of one variable.
func (s *Solution) GetVariable(name string) []float64 {
	out := make([]float64, 0, len(s.U))
	for _, st := range s.U {
		out = append(out, st[name])
	}
	return out
}

// GetFinalState returns the last recorded environment.
func (s *Solution) GetFinalState() map[string]float64 {
	if len(s.U) == 0 {
		return nil
	}
	return s.U[len(s.U)-1]
}

// GetState returns the environment at time point index i.
func (s *Solution) GetState(i int) map[string]float64 {
	if i < 0 || i >= len(s.U) {
		return nil
	}
	return s.U[i]
}

// Options contains solver configuration parameters.
type Options struct {
	Dt       float64 // Initial time step
	Dtmin    float64 // Minimum time step
	Dtmax    float64 // Maximum time step
	Abstol   float64 // Absolute error tolerance
	Reltol   float64 // Relative error tolerance
	Maxiters int     // Maximum number of iterations
	Adaptive bool    // Use adaptive step size control
}

// DefaultOptions returns balanced settings suitable for most models.
func DefaultOptions() *Options {
	return &Options{
		Dt:       0.01,
		Dtmin:    1e-6,
		Dtmax:    0.1,
		Abstol:   1e-6,
		Reltol:   1e-3,
		Maxiters: 100000,
		Adaptive: true,
	}
}

// FastOptions trades precision for speed, for interactive exploration.
func FastOptions() *Options {
	return &Options{
		Dt:       0.1,
		Dtmin:    1e-4,
		Dtmax:    1.0,
		Abstol:   1e-2,
		Reltol:   1e-2,
		Maxiters: 1000,
		Adaptive: true,
	}
}

// AccurateOptions returns high-precision settings.
func AccurateOptions() *Options {
	return &Options{
		Dt:       0.001,
		Dtmin:    1e-8,
		Dtmax:    0.1,
		Abstol:   1e-9,
		Reltol:   1e-6,
		Maxiters: 1000000,
		Adaptive: true,
	}
}

// StiffOptions returns settings for systems with widely varying time scales,
// such as a stiff spring against a weak damper.
func StiffOptions() *Options {
	return &Options{
		Dt:       0.001,
		Dtmin:    1e-10,
		Dtmax:    0.01,
		Abstol:   1e-8,
		Reltol:   1e-5,
		Maxiters: 500000,
		Adaptive: true,
	}
}

// Solver is an explicit embedded Runge-Kutta method.
type Solver struct {
	Name  string
	Order int
	C     []float64   // Runge-Kutta nodes
	A     [][]float64 // Runge-Kutta matrix
	B     []float64   // Solution weights
	Bhat  []float64   // Error estimate weights
}

// Solve integrates the problem with the given method and options. A nil
// method selects Tsit5, nil options select DefaultOptions.
func Solve(prob *Problem, method *Solver, opts *Options) *Solution {
	if method == nil {
		method = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	dt := opts.Dt
	dtmin := opts.Dtmin
	dtmax := opts.Dtmax
	abstol := opts.Abstol
	reltol := opts.Reltol
	maxiters := opts.Maxiters
	adaptive := opts.Adaptive

	t0 := prob.Tspan[0]
	tf := prob.Tspan[1]
	n := len(prob.u0)

	tOut := []float64{t0}
	envOut := []map[string]float64{prob.eval(t0, prob.u0)}
	tcur := t0
	ucur := append([]float64(nil), prob.u0...)
	dtcur := dt
	nsteps := 0

	numStages := len(method.C)

	for tcur < tf && nsteps < maxiters {
		// Don't overshoot the final time
		if tcur+dtcur > tf {
			dtcur = tf - tcur
		}

		// Compute Runge-Kutta stages
		k := make([][]float64, numStages)
		k[0] = prob.derivatives(tcur, ucur)

		for stage := 1; stage < numStages; stage++ {
			tstage := tcur + method.C[stage]*dtcur
			ustage := append([]float64(nil), ucur...)
			for j := 0; j < stage; j++ {
				aj := 0.0
				if len(method.A) > stage && len(method.A[stage]) > j {
					aj = method.A[stage][j]
				}
				if aj != 0 {
					scale := dtcur * aj
					for i := 0; i < n; i++ {
						ustage[i] += scale * k[j][i]
					}
				}
			}
			k[stage] = prob.derivatives(tstage, ustage)
		}

		// Compute solution at next step
		unext := append([]float64(nil), ucur...)
		for j := 0; j < len(method.B); j++ {
			if method.B[j] != 0 {
				scale := dtcur * method.B[j]
				for i := 0; i < n; i++ {
					unext[i] += scale * k[j][i]
				}
			}
		}

		// Compute error estimate for adaptive stepping
		err := 0.0
		if adaptive {
			for i := 0; i < n; i++ {
				errest := 0.0
				for j := 0; j < len(method.Bhat); j++ {
					errest += dtcur * method.Bhat[j] * k[j][i]
				}
				uc := ucur[i]
				un := unext[i]
				scale := abstol + reltol*math.Max(math.Abs(uc), math.Abs(un))
				if scale == 0 {
					scale = abstol
				}
				val := math.Abs(errest) / scale
				if val > err {
					err = val
				}
			}
		}

		// Accept or reject step
		if !adaptive || err <= 1.0 || dtcur <= dtmin {
			tcur += dtcur
			ucur = unext
			tOut = append(tOut, tcur)
			envOut = append(envOut, prob.eval(tcur, ucur))
			nsteps++

			if adaptive && err > 0 {
				factor := 0.9 * math.Pow(1.0/err, 1.0/float64(method.Order+1))
				factor = math.Min(factor, 5.0)
				dtcur = math.Min(dtmax, math.Max(dtmin, dtcur*factor))
			}
		} else {
			// Reject step and reduce step size
			factor := 0.9 * math.Pow(1.0/err, 1.0/float64(method.Order+1))
			factor = math.Max(factor, 0.1)
			dtcur = math.Max(dtmin, dtcur*factor)
		}
	}

	return &Solution{
		T:           tOut,
		U:           envOut,
		StateLabels: append([]string(nil), prob.labels...),
	}
}
