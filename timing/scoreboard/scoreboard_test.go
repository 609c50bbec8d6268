package scoreboard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/latency"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

// cycles returns issue, read operands, execute complete and write result.
func cycles(inst *insts.Instruction) []uint64 {
	return []uint64{
		inst.Issue(), inst.ReadOperands(), inst.ExecComplete(), inst.WriteResult(),
	}
}

func decodeAll(lines ...string) []*insts.Instruction {
	decoder := insts.NewDecoder()
	program := make([]*insts.Instruction, 0, len(lines))
	for _, l := range lines {
		inst, err := decoder.Decode(l)
		Expect(err).NotTo(HaveOccurred())
		program = append(program, inst)
	}
	return program
}

func units(decls ...latency.UnitConfig) *latency.TimingConfig {
	return &latency.TimingConfig{Units: decls}
}

func run(board *scoreboard.Scoreboard) {
	for i := 0; i < 10000 && !board.Done(); i++ {
		board.Tick()
	}
	Expect(board.Done()).To(BeTrue())
}

var _ = Describe("Scoreboard", func() {
	Describe("New", func() {
		It("should reject a program needing an undeclared unit", func() {
			_, err := scoreboard.New(
				units(latency.UnitConfig{Kind: "mult", Count: 1, Latency: 2}),
				decodeAll("MULTD F0, F2, F4", "DIVD F2, F0, F6"),
			)
			Expect(err).To(MatchError(scoreboard.ErrUnserviceable))
			Expect(err.Error()).To(ContainSubstring("missing unit kinds div (declared: mult)"))
		})

		It("should reject malformed declarations", func() {
			_, err := scoreboard.New(
				units(latency.UnitConfig{Kind: "mult", Count: 1, Latency: 0}),
				decodeAll("MULTD F0, F2, F4"),
			)
			Expect(err).To(HaveOccurred())
		})

		It("should create count instances per declaration in order", func() {
			board, err := scoreboard.New(latency.DefaultTimingConfig(), nil)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, u := range board.Units() {
				names = append(names, u.Name)
			}
			Expect(names).To(Equal([]string{
				"integer1", "add1", "add2", "mult1", "mult2", "div1",
			}))
		})

		It("should number repeated kinds across declarations", func() {
			program := decodeAll("LI R1, 1", "LI R2, 2")
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "integer", Count: 1, Latency: 1},
				latency.UnitConfig{Kind: "integer", Count: 1, Latency: 3},
			), program)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, u := range board.Units() {
				names = append(names, u.Name)
			}
			Expect(names).To(Equal([]string{"integer1", "integer2"}))

			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 3, 4}))
			Expect(cycles(program[1])).To(Equal([]uint64{2, 3, 6, 7}))
		})

		It("should start at clock 1", func() {
			board, err := scoreboard.New(latency.DefaultTimingConfig(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(board.Clock()).To(Equal(uint64(1)))
		})
	})

	Describe("Termination", func() {
		It("should be done immediately for an empty program", func() {
			board, err := scoreboard.New(latency.DefaultTimingConfig(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(board.Done()).To(BeTrue())
		})

		It("should answer Done the same way until the next Tick", func() {
			board, err := scoreboard.New(latency.DefaultTimingConfig(),
				decodeAll("ADDD F0, F2, F4"))
			Expect(err).NotTo(HaveOccurred())

			board.Tick()
			first := board.Done()
			Expect(board.Done()).To(Equal(first))
			Expect(board.Done()).To(Equal(first))
			Expect(board.Clock()).To(Equal(uint64(2)))
		})

		It("should not be done while a unit is busy", func() {
			board, err := scoreboard.New(latency.DefaultTimingConfig(),
				decodeAll("ADDD F0, F2, F4"))
			Expect(err).NotTo(HaveOccurred())

			board.Tick()
			Expect(board.HasRemainingInsts()).To(BeFalse())
			Expect(board.Done()).To(BeFalse())
		})
	})

	Describe("RAW dependency between a multiply and a divide", func() {
		var (
			board   *scoreboard.Scoreboard
			program []*insts.Instruction
		)

		BeforeEach(func() {
			program = decodeAll("MULTD F0, F2, F4", "DIVD F2, F0, F6")

			var err error
			board, err = scoreboard.New(units(
				latency.UnitConfig{Kind: "div", Count: 1, Latency: 4},
				latency.UnitConfig{Kind: "mult", Count: 1, Latency: 2},
			), program)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should record the stage cycles", func() {
			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 4, 5}))
			Expect(cycles(program[1])).To(Equal([]uint64{2, 6, 10, 11}))
			Expect(board.Stats().Cycles).To(Equal(uint64(11)))
			Expect(board.Stats().Completed).To(Equal(uint64(2)))
		})

		It("should point the divider at the multiplier while F0 is pending", func() {
			board.Tick()
			board.Tick()

			div := board.Units()[0]
			Expect(div.Busy).To(BeTrue())
			Expect(div.Qj).To(Equal("mult1"))
			Expect(div.Rj).To(BeFalse())
			Expect(div.Qk).To(BeEmpty())
			Expect(div.Rk).To(BeTrue())
			Expect(board.RegisterStatus()).To(Equal(map[string]string{
				"F0": "mult1",
				"F2": "div1",
			}))
		})

		It("should count the divider's operand wait as RAW stalls", func() {
			run(board)
			// The divider waits in cycles 3, 4 and 5.
			Expect(board.Stats().RAWStalls).To(Equal(uint64(3)))
		})
	})

	Describe("Structural hazard", func() {
		It("should not issue to a busy unit until it writes back", func() {
			program := decodeAll("ADDD F0, F2, F4", "ADDD F6, F8, F10")
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "add", Count: 1, Latency: 2},
			), program)
			Expect(err).NotTo(HaveOccurred())

			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 4, 5}))
			Expect(cycles(program[1])).To(Equal([]uint64{6, 7, 9, 10}))
			Expect(board.Stats().StructuralStalls).To(Equal(uint64(4)))
		})

		It("should use a second instance when one is free", func() {
			program := decodeAll("ADDD F0, F2, F4", "ADDD F6, F8, F10")
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "add", Count: 2, Latency: 2},
			), program)
			Expect(err).NotTo(HaveOccurred())

			run(board)

			Expect(cycles(program[1])).To(Equal([]uint64{2, 3, 5, 6}))
			Expect(board.Stats().StructuralStalls).To(BeZero())
		})
	})

	Describe("Output dependency", func() {
		It("should stall issue until the pending producer writes back", func() {
			program := decodeAll("ADDD F0, F2, F4", "ADDD F0, F6, F8")
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "add", Count: 2, Latency: 2},
			), program)
			Expect(err).NotTo(HaveOccurred())

			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 4, 5}))
			Expect(cycles(program[1])).To(Equal([]uint64{6, 7, 9, 10}))
			Expect(board.Stats().WAWStalls).To(Equal(uint64(4)))
		})
	})

	Describe("Anti-dependency", func() {
		It("should hold write back until earlier readers have read", func() {
			program := decodeAll(
				"MULTD F0, F2, F4",
				"ADDD F6, F0, F8",
				"LD F8, 0(R1)",
			)
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "integer", Count: 1, Latency: 1},
				latency.UnitConfig{Kind: "add", Count: 1, Latency: 1},
				latency.UnitConfig{Kind: "mult", Count: 1, Latency: 4},
			), program)
			Expect(err).NotTo(HaveOccurred())

			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 6, 7}))
			Expect(cycles(program[1])).To(Equal([]uint64{2, 8, 9, 10}))
			Expect(cycles(program[2])).To(Equal([]uint64{3, 4, 5, 8}))
			Expect(board.Stats().WARStalls).To(Equal(uint64(2)))
		})
	})

	Describe("Stores", func() {
		It("should wait for the stored register but claim no destination", func() {
			program := decodeAll("MULTD F0, F2, F4", "SD F0, 0(R1)")
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "integer", Count: 1, Latency: 1},
				latency.UnitConfig{Kind: "mult", Count: 1, Latency: 2},
			), program)
			Expect(err).NotTo(HaveOccurred())

			board.Tick()
			board.Tick()
			Expect(board.RegisterStatus()).To(Equal(map[string]string{
				"F0": "mult1",
			}))

			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 4, 5}))
			Expect(cycles(program[1])).To(Equal([]uint64{2, 6, 7, 8}))
		})
	})

	Describe("Sources pending at issue", func() {
		It("should wait for both producers before reading", func() {
			program := decodeAll(
				"MULTD F0, F4, F4",
				"MULTD F2, F4, F4",
				"ADDD F6, F0, F2",
			)
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "mult", Count: 2, Latency: 10},
				latency.UnitConfig{Kind: "add", Count: 1, Latency: 1},
			), program)
			Expect(err).NotTo(HaveOccurred())

			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 12, 13}))
			Expect(cycles(program[1])).To(Equal([]uint64{2, 3, 13, 14}))
			Expect(cycles(program[2])).To(Equal([]uint64{3, 15, 16, 17}))
		})

		It("should wait when one producer feeds both sources", func() {
			program := decodeAll(
				"LD F4, 0(R1)",
				"MULTD F2, F4, F4",
			)
			board, err := scoreboard.New(units(
				latency.UnitConfig{Kind: "integer", Count: 1, Latency: 1},
				latency.UnitConfig{Kind: "mult", Count: 1, Latency: 2},
			), program)
			Expect(err).NotTo(HaveOccurred())

			run(board)

			Expect(cycles(program[0])).To(Equal([]uint64{1, 2, 3, 4}))
			Expect(cycles(program[1])).To(Equal([]uint64{2, 5, 7, 8}))
			Expect(program[1].ReadOperands()).
				To(BeNumerically(">", program[0].WriteResult()))
			Expect(board.Stats().RAWStalls).To(Equal(uint64(2)))
		})
	})

	Describe("Invariants", func() {
		var (
			board   *scoreboard.Scoreboard
			program []*insts.Instruction
		)

		BeforeEach(func() {
			program = decodeAll(
				"LD F6, 34(R2)",
				"LD F2, 45(R3)",
				"MULTD F0, F2, F4",
				"SUBD F8, F6, F2",
				"DIVD F10, F0, F6",
				"ADDD F6, F8, F2",
				"SD F6, 0(R1)",
				"ADDI R1, R1, 8",
			)

			var err error
			board, err = scoreboard.New(latency.DefaultTimingConfig(), program)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should hold on every cycle", func() {
			for i := 0; i < 10000 && !board.Done(); i++ {
				board.Tick()

				served := map[int]bool{}
				for _, u := range board.Units() {
					if !u.Busy {
						Expect(u.Inst).To(Equal(-1))
						continue
					}
					Expect(served[u.Inst]).To(BeFalse(),
						"instruction %d served twice", u.Inst)
					served[u.Inst] = true
				}

				byName := map[string]scoreboard.UnitStatus{}
				for _, u := range board.Units() {
					byName[u.Name] = u
				}
				for reg, name := range board.RegisterStatus() {
					Expect(byName[name].Busy).To(BeTrue())
					Expect(byName[name].Fi).To(Equal(reg))
				}
			}

			Expect(board.Done()).To(BeTrue())
		})

		It("should complete every instruction with ordered stages", func() {
			run(board)

			for _, inst := range program {
				c := cycles(inst)
				Expect(inst.Completed()).To(BeTrue(), inst.Text)
				Expect(c[0]).To(BeNumerically("<", c[1]), inst.Text)
				Expect(c[1]).To(BeNumerically("<", c[2]), inst.Text)
				Expect(c[2]).To(BeNumerically("<", c[3]), inst.Text)
			}
		})

		It("should issue in program order", func() {
			run(board)

			for i := 1; i < len(program); i++ {
				Expect(program[i].Issue()).
					To(BeNumerically(">", program[i-1].Issue()))
			}
		})

		It("should be deterministic across runs", func() {
			run(board)
			first := make([][]uint64, len(program))
			for i, inst := range program {
				first[i] = cycles(inst)
			}

			board.Reset()
			Expect(program[0].Reached(insts.StageIssue)).To(BeFalse())
			run(board)

			for i, inst := range program {
				Expect(cycles(inst)).To(Equal(first[i]))
			}
		})
	})
})
