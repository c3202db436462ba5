package epidemic_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/epidemic"
)

var _ = Describe("Simulator", func() {
	var (
		sim  *epidemic.Simulator
		x0   epidemic.State
		grid []float64
	)

	BeforeEach(func() {
		sim = epidemic.DefaultSimulator()
		x0 = epidemic.DefaultInitialState()
		grid = dynamo.Linspace(0, 100, 100)
	})

	DescribeTable("starts exactly at the initial state",
		func(p epidemic.Params) {
			tr, err := sim.Solve(x0, grid, 1.0, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(len(grid)))
			Expect(tr.At(0)).To(Equal(x0))
		},
		Entry("default rates", epidemic.DefaultParams()),
		Entry("slider minimum", epidemic.Params{Beta: 0.001, Gamma: 0.001, Omega: 0.03, Epsilon: 0.01, Mu: 0.001}),
		Entry("slider maximum", epidemic.Params{Beta: 0.5, Gamma: 0.5, Omega: 0.03, Epsilon: 0.01, Mu: 0.5}),
		Entry("no transmission", epidemic.Params{Gamma: 0.07, Omega: 0.03, Epsilon: 0.01, Mu: 0.01}),
	)

	It("is deterministic across calls", func() {
		a, err := sim.Solve(x0, grid, 1.0, epidemic.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.Solve(x0, grid, 1.0, epidemic.DefaultParams())
		Expect(err).NotTo(HaveOccurred())

		for i := range a.States {
			for _, c := range epidemic.Compartments {
				va, vb := a.At(i).Get(c), b.At(i).Get(c)
				Expect(math.Abs(va - vb)).To(BeNumerically("<=", 1e-9*math.Max(1, math.Abs(va))))
			}
		}
	})

	Context("without population growth", func() {
		var p epidemic.Params

		BeforeEach(func() {
			p = epidemic.DefaultParams()
			p.Mu = 0
			grid = dynamo.Linspace(0, 100, 100000)
		})

		It("conserves S+I+R at every grid point", func() {
			tr, err := sim.Solve(x0, grid, 1.0, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(100000))

			for _, s := range tr.States {
				Expect(s.S + s.I + s.R).To(BeNumerically("~", 1.0, 1e-6))
			}
		})

		It("conserves the full total when mortality is also zero", func() {
			p.Omega = 0
			tr, err := sim.Solve(x0, grid, 1.0, p)
			Expect(err).NotTo(HaveOccurred())

			for _, s := range tr.States {
				Expect(s.Total()).To(BeNumerically("~", 1.0, 1e-6))
			}
		})

		It("keeps deaths proportional to recoveries", func() {
			tr, err := sim.Solve(x0, grid, 1.0, p)
			Expect(err).NotTo(HaveOccurred())

			ratio := p.Omega / p.Gamma
			for _, s := range tr.States {
				Expect(s.D).To(BeNumerically("~", ratio*s.R, 1e-6))
			}
		})
	})

	It("converges when the tolerance is halved", func() {
		coarse, err := sim.Solve(x0, grid, 1.0, epidemic.DefaultParams())
		Expect(err).NotTo(HaveOccurred())

		opts := sim.Options()
		opts.Tolerance.Rel /= 2
		opts.Tolerance.Abs /= 2
		fine, err := sim.WithOptions(opts).Solve(x0, grid, 1.0, epidemic.DefaultParams())
		Expect(err).NotTo(HaveOccurred())

		Expect(coarse.MaxDeviation(fine)).To(BeNumerically("<", 1e-4))
	})

	It("never grows the infected compartment without transmission", func() {
		p := epidemic.DefaultParams()
		p.Beta = 0
		tr, err := sim.Solve(x0, grid, 1.0, p)
		Expect(err).NotTo(HaveOccurred())

		infected := tr.Series(epidemic.Infected)
		for i := 1; i < len(infected); i++ {
			Expect(infected[i]).To(BeNumerically("<=", infected[i-1]))
		}
	})

	Describe("the reference outbreak", func() {
		var tr *epidemic.Trajectory

		BeforeEach(func() {
			p := epidemic.Params{Beta: 0.22, Gamma: 0.07, Omega: 0.03, Epsilon: 0.01, Mu: 0.01}
			var err error
			tr, err = sim.Solve(epidemic.State{S: 0.99, I: 0.01}, grid, 1.0, p)
			Expect(err).NotTo(HaveOccurred())
		})

		It("peaks infections inside the horizon", func() {
			idx, peak := tr.Peak(epidemic.Infected)
			Expect(idx).To(BeNumerically(">", 0))
			Expect(idx).To(BeNumerically("<", tr.Len()-1))
			Expect(peak).To(BeNumerically(">", 0.01))
			Expect(tr.Final().I).To(BeNumerically("<", peak))
		})

		It("depletes susceptibles before births replenish them", func() {
			minIdx, minS := tr.Trough(epidemic.Susceptible)
			peakIdx, _ := tr.Peak(epidemic.Infected)
			Expect(minIdx).To(BeNumerically(">", peakIdx))

			susceptible := tr.Series(epidemic.Susceptible)
			for i := 1; i <= minIdx; i++ {
				Expect(susceptible[i]).To(BeNumerically("<", susceptible[i-1]))
			}
			Expect(tr.Final().S).To(BeNumerically(">", minS))
		})

		It("accumulates deaths monotonically", func() {
			deaths := tr.Series(epidemic.Deceased)
			for i := 1; i < len(deaths); i++ {
				Expect(deaths[i]).To(BeNumerically(">=", deaths[i-1]))
			}
			Expect(tr.Final().D).To(BeNumerically(">", 0))
		})
	})

	It("rejects an empty population without a partial trajectory", func() {
		tr, err := sim.Solve(x0, grid, 0, epidemic.DefaultParams())
		Expect(err).To(MatchError(dynamo.ErrInvalidModel))
		Expect(tr).To(BeNil())
	})
})
