package grid

import (
	"github.com/matzehuels/obj2acf/pkg/errors"
)

// Order returns the sequence in which indices 0..n-1 are written.
// Implementations must return a permutation of 0..n-1.
type Order func(n int) []int

// Ascending writes indices in natural order.
func Ascending(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// PlaneMaker writes 0, 1, then 10 and up, then 2 through 9: the order the
// destination editor itself uses, which sorts index strings as text within
// the first two.
func PlaneMaker(n int) []int {
	out := make([]int, 0, n)
	for i := 0; i < min(n, 2); i++ {
		out = append(out, i)
	}
	for i := 10; i < n; i++ {
		out = append(out, i)
	}
	for i := 2; i < min(n, 10); i++ {
		out = append(out, i)
	}
	return out
}

// Order names accepted by [ParseOrder].
const (
	OrderAscending  = "ascending"
	OrderPlaneMaker = "planemaker"
)

// ParseOrder maps a name to an Order. The empty string selects PlaneMaker.
func ParseOrder(name string) (Order, error) {
	switch name {
	case "", OrderPlaneMaker:
		return PlaneMaker, nil
	case OrderAscending:
		return Ascending, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid order: %q (must be 'planemaker' or 'ascending')", name)
}

// Emission holds the orders for the station and slot axes. A nil order
// means Ascending.
type Emission struct {
	Stations Order
	Slots    Order
}

// PlaneMakerEmission uses the editor's order on both axes.
func PlaneMakerEmission() Emission { return Emission{Stations: PlaneMaker, Slots: PlaneMaker} }

func (e Emission) resolve(shape Shape) (is, js []int, err error) {
	is, err = apply(e.Stations, shape.Stations, "station")
	if err != nil {
		return nil, nil, err
	}
	js, err = apply(e.Slots, shape.Slots, "slot")
	return is, js, err
}

func apply(o Order, n int, axis string) ([]int, error) {
	if o == nil {
		o = Ascending
	}
	seq := o(n)
	if len(seq) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s order yields %d indices, want %d", axis, len(seq), n)
	}
	seen := make([]bool, n)
	for _, i := range seq {
		if i < 0 || i >= n || seen[i] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s order is not a permutation of 0..%d", axis, n-1)
		}
		seen[i] = true
	}
	return seq, nil
}
