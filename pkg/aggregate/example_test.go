package aggregate_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/profile"
)

func Example() {
	p := profile.MustNew([][]int{
		{0, 1, 2, 3, 4},
		{0, 1, 3, 2, 4},
		{4, 1, 2, 0, 3},
		{4, 1, 0, 2, 3},
		{4, 1, 3, 2, 0},
	})

	for _, name := range []string{"dp", "borda", "schulze"} {
		m, err := aggregate.Lookup(name, aggregate.Options{})
		if err != nil {
			panic(err)
		}
		res, err := m.Aggregate(context.Background(), p)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%-8s %v score=%d\n", res.Method, res.Order, res.Score)
	}
	// Output:
	// dp       [1 3 2 4 0] score=15
	// borda    [1 3 2 0 4] score=16
	// schulze  [1 3 2 4 0] score=15
}

func ExampleSubsetDP() {
	p := profile.MustNew([][]int{
		{0, 1, 2},
		{1, 0, 2},
		{0, 2, 1},
	})
	res, _ := aggregate.SubsetDP{}.Aggregate(context.Background(), p)
	fmt.Println(res.Order, res.Score, res.Exact)
	// Output: [0 1 2] 2 true
}
