package circuit_test

import (
	"fmt"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
)

func ExampleNew() {
	// Series loop: a 6V source with three 1Ω resistors
	g, err := circuit.New(3, []circuit.Record{
		{From: 0, To: 1, Resistance: 1, Voltage: 6},
		{From: 1, To: 2, Resistance: 1},
		{From: 2, To: 0, Resistance: 1},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Branches:", g.EdgeCount())
	for _, b := range g.Branches() {
		fmt.Println(b.Column, b.Ref, b.Label)
	}
	// Output:
	// Nodes: 3
	// Branches: 3
	// 0 [0]---->[1] 1Ω 6V
	// 1 [1]---->[2] 1Ω
	// 2 [2]---->[0] 1Ω
}

func ExampleGraph_Column() {
	g, _ := circuit.New(3, []circuit.Record{
		{From: 0, To: 1, Resistance: 1},
		{From: 2, To: 0, Resistance: 1},
	})

	a, _ := g.Column(0, 2)
	b, _ := g.Column(2, 0)
	_, err := g.Column(1, 2)
	fmt.Println(a, b)
	fmt.Println(err)
	// Output:
	// 1 1
	// NOT_FOUND: no branch between 1 and 2: branch not found
}

func ExampleClassify() {
	g, _ := circuit.New(2, []circuit.Record{
		{From: 0, To: 1, Resistance: 10, Voltage: 5, Capacitance: 0.001},
	})
	fmt.Println(circuit.Classify(g))
	// Output: RC
}
