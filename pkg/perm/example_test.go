package perm_test

import (
	"fmt"

	"github.com/matzehuels/kemeny/pkg/perm"
)

func ExampleEach() {
	perm.Each(3, func(p []int) bool {
		fmt.Println(p)
		return true
	})
	// Output:
	// [0 1 2]
	// [0 2 1]
	// [1 0 2]
	// [1 2 0]
	// [2 0 1]
	// [2 1 0]
}

func ExampleFactorial() {
	fmt.Println("4! =", perm.Factorial(4))
	fmt.Println("5! =", perm.Factorial(5))
	// Output:
	// 4! = 24
	// 5! = 120
}
