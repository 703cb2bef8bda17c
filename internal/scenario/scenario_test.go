package scenario_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"portalphys/internal/physics"
	"portalphys/internal/scenario"
)

func run(name string) (*scenario.Instance, *scenario.Result) {
	file, err := scenario.Builtin(name)
	Expect(err).NotTo(HaveOccurred())
	inst, err := file.Build(physics.DefaultConfig())
	Expect(err).NotTo(HaveOccurred())
	result, err := scenario.NewRunner(10).Run(context.Background(), inst, 0)
	Expect(err).NotTo(HaveOccurred())
	return inst, result
}

type stepCounter struct{ steps int }

func (c *stepCounter) OnStep(*scenario.Instance, physics.StepStats) { c.steps++ }

var _ = Describe("Built-in scenarios", func() {
	It("lists every embedded scenario", func() {
		Expect(scenario.List()).To(ContainElements("box_on_floor", "head_on", "tunnel", "grab", "floor_portal", "rooms", "fizzler"))
	})

	It("rejects unknown names", func() {
		_, err := scenario.Builtin("nope")
		Expect(err).To(MatchError(scenario.ErrUnknownScenario))
	})

	DescribeTable("meets its expectations",
		func(name string) {
			_, result := run(name)
			Expect(result.Failures).To(BeEmpty())
			Expect(result.Passed()).To(BeTrue())
		},
		Entry("a box settles on the floor", "box_on_floor"),
		Entry("equal boxes trade velocities", "head_on"),
		Entry("a fast sphere does not tunnel", "tunnel"),
		Entry("a held crate ignores its holder", "grab"),
		Entry("a ball falls through a floor portal", "floor_portal"),
		Entry("a ball changes room through a doorway", "rooms"),
		Entry("a crate is fizzled", "fizzler"),
	)

	It("takes the swept path in the tunnel scenario", func() {
		_, result := run("tunnel")
		Expect(result.SweptTests).To(BeNumerically(">", 0))
	})

	It("teleports exactly once through the floor portal", func() {
		_, result := run("floor_portal")
		Expect(result.Teleports).To(Equal(1))
	})

	It("settles the box within ten ticks", func() {
		file, err := scenario.Builtin("box_on_floor")
		Expect(err).NotTo(HaveOccurred())
		inst, err := file.Build(physics.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		_, err = scenario.NewRunner(1).Run(context.Background(), inst, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Body("box").Velocity.Y).To(BeNumerically("~", 0, 0.1))
	})
})

var _ = Describe("Runner", func() {
	It("is deterministic", func() {
		_, first := run("box_stack")
		_, second := run("box_stack")
		Expect(second.Samples).To(Equal(first.Samples))
	})

	It("samples every nth tick plus the last", func() {
		file, err := scenario.Builtin("head_on")
		Expect(err).NotTo(HaveOccurred())
		inst, err := file.Build(physics.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		counter := &stepCounter{}
		runner := scenario.NewRunner(25)
		runner.AddObserver(counter)
		result, err := runner.Run(context.Background(), inst, 60)
		Expect(err).NotTo(HaveOccurred())

		Expect(counter.steps).To(Equal(60))
		Expect(result.Samples["left"]).To(HaveLen(4))
		Expect(result.Series("left", func(s scenario.Sample) float32 { return s.Position.X })).To(HaveLen(4))
	})

	It("stops when the context is cancelled", func() {
		file, err := scenario.Builtin("head_on")
		Expect(err).NotTo(HaveOccurred())
		inst, err := file.Build(physics.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := scenario.NewRunner(1).Run(ctx, inst, 60)
		Expect(err).To(MatchError(context.Canceled))
		Expect(result.Ticks).To(Equal(0))
	})
})

var _ = Describe("Scenario files", func() {
	It("round trips through YAML", func() {
		file, err := scenario.Builtin("floor_portal")
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(GinkgoT().TempDir(), "copy.yaml")
		Expect(file.Save(path)).To(Succeed())

		loaded, err := scenario.Resolve(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(file))
	})

	It("requires a name", func() {
		_, err := scenario.Parse([]byte("ticks: 10\n"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown shapes", func() {
		file, err := scenario.Parse([]byte("name: bad\nbodies:\n  - name: x\n    shape: {type: torus}\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = file.Build(physics.DefaultConfig())
		Expect(err).To(MatchError(physics.ErrInvalidShape))
	})

	It("rejects constraints on unknown bodies", func() {
		file, err := scenario.Parse([]byte("name: bad\nconstraints:\n  - body: ghost\n    target: [0, 1, 0]\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = file.Build(physics.DefaultConfig())
		Expect(err).To(MatchError(physics.ErrInvalidHandle))
	})

	It("builds compound bodies and repeats", func() {
		file, err := scenario.Parse([]byte(`name: compound
bodies:
  - name: dumbbell
    position: [0, 2, 0]
    count: 2
    spacing: [3, 0, 0]
    shape:
      type: compound
      children:
        - {type: sphere, radius: 0.3, offset: [-0.5, 0, 0]}
        - {type: sphere, radius: 0.3, offset: [0.5, 0, 0]}
`))
		Expect(err).NotTo(HaveOccurred())
		inst, err := file.Build(physics.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Names).To(Equal([]string{"dumbbell_0", "dumbbell_1"}))
		Expect(inst.Body("dumbbell_1").Transform.Position.X).To(BeNumerically("~", 3, 1e-6))
	})

	It("reports failed expectations", func() {
		file, err := scenario.Parse([]byte(`name: falling
ticks: 30
bodies:
  - name: rock
    shape: {type: sphere, radius: 0.5}
    position: [0, 5, 0]
expect:
  - body: rock
    min_y: 5
`))
		Expect(err).NotTo(HaveOccurred())
		inst, err := file.Build(physics.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		result, err := scenario.NewRunner(1).Run(context.Background(), inst, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Passed()).To(BeFalse())
		Expect(result.Failures).To(HaveLen(1))
	})

	It("loads a scenario from disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "tiny.yaml")
		Expect(os.WriteFile(path, []byte("name: tiny\nticks: 5\n"), 0644)).To(Succeed())
		file, err := scenario.Resolve(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(file.Ticks).To(Equal(5))
	})
})
