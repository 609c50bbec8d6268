// Package benchmarks provides small scoreboard programs that each stress one
// kind of hazard, for regression checks and performance measurement.
package benchmarks

import (
	"strings"

	"github.com/sarchlab/scoreboard/loader"
)

// Benchmark is a named assembly program with its own unit declarations.
type Benchmark struct {
	Name        string
	Description string
	Source      string
}

// Load parses the benchmark source.
func (b Benchmark) Load() (*loader.Program, error) {
	return loader.Parse(strings.NewReader(b.Source))
}

// GetMicrobenchmarks returns the standard set of microbenchmarks.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		dependencyChain(),
		structuralContention(),
		outputDependency(),
		antiDependency(),
		textbookExample(),
	}
}

// 1. Dependency Chain - every instruction reads the previous result
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "serial RAW chain across the FP units",
		Source: `
.integer 1 1
.add     2 2
.mult    2 10
.div     1 40
LD    F2, 0(R1)
MULTD F4, F2, F2
ADDD  F6, F4, F2
DIVD  F8, F6, F4
SUBD  F10, F8, F6
`,
	}
}

// 2. Structural Contention - more multiplies than multipliers
func structuralContention() Benchmark {
	return Benchmark{
		Name:        "structural_contention",
		Description: "four independent multiplies on one multiplier",
		Source: `
.mult 1 3
MULTD F0, F2, F4
MULTD F6, F8, F10
MULTD F12, F14, F16
MULTD F18, F20, F22
`,
	}
}

// 3. Output Dependency - repeated writes to the same register
func outputDependency() Benchmark {
	return Benchmark{
		Name:        "output_dependency",
		Description: "three adds writing F0 with free adders available",
		Source: `
.add 3 2
ADDD F0, F2, F4
ADDD F0, F6, F8
ADDD F0, F10, F12
`,
	}
}

// 4. Anti Dependency - a fast load overwrites a register a slow add still needs
func antiDependency() Benchmark {
	return Benchmark{
		Name:        "anti_dependency",
		Description: "load overwrites an unread add operand",
		Source: `
.integer 1 1
.add     1 1
.mult    1 4
MULTD F0, F2, F4
ADDD  F6, F0, F8
LD    F8, 0(R1)
`,
	}
}

// 5. Textbook Example - the classic scoreboard walkthrough program
func textbookExample() Benchmark {
	return Benchmark{
		Name:        "textbook_example",
		Description: "Hennessy & Patterson scoreboard example",
		Source: `
.integer 1 1
.add     2 2
.mult    2 10
.div     1 40
LD    F6, 34(R2)
LD    F2, 45(R3)
MULTD F0, F2, F4
SUBD  F8, F6, F2
DIVD  F10, F0, F6
ADDD  F6, F8, F2
`,
	}
}
