package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/editor"
	"github.com/san-kum/craftsim/internal/physics"
)

const dt = 1.0 / 60

var _ = Describe("Solver", func() {
	var (
		ed     *editor.Editor
		anchor int
		bob    int
		cfg    physics.Config
	)

	BeforeEach(func() {
		ed = editor.New(nil)
		anchor = ed.AddNode(craft.V(0, 0), craft.Fixed)
		cfg = physics.DefaultConfig()
	})

	distance := func(c *craft.Craft) float64 { return c.Distance(anchor, bob) }

	Context("with a solid rod hanging from a fixed node", func() {
		BeforeEach(func() {
			bob = ed.AddNode(craft.V(0, 100), craft.Joint)
			_, err := ed.AddRod(anchor, bob, craft.Solid)
			Expect(err).NotTo(HaveOccurred())
		})

		It("pulls the joint back to the rest length within one step", func() {
			s := physics.New(ed.Craft(), cfg)
			s.Step(dt)

			c := s.Craft()
			Expect(c.Nodes[bob].Pos.Y).To(BeNumerically(">", 100))
			Expect(distance(c)).To(BeNumerically("~", 100, 0.01))
		})

		It("never moves the fixed node", func() {
			s := physics.New(ed.Craft(), cfg)
			start := s.Craft().Nodes[anchor]
			for i := 0; i < 1000; i++ {
				s.Step(dt)
			}
			Expect(s.Craft().Nodes[anchor]).To(Equal(start))
		})
	})

	Context("with a stretched solid rod and no gravity", func() {
		BeforeEach(func() {
			bob = ed.AddNode(craft.V(0, 150), craft.Joint)
			_, err := ed.AddRod(anchor, bob, craft.Solid)
			Expect(err).NotTo(HaveOccurred())
			ed.Craft().Rods[0].RestLength = 100
			cfg.Gravity = craft.Vec2{}
		})

		It("converges monotonically toward the rest length", func() {
			s := physics.New(ed.Craft(), cfg)
			prev := math.Abs(distance(s.Craft()) - 100)
			for i := 0; i < 100 && prev > 1e-6; i++ {
				s.Relax()
				gap := math.Abs(distance(s.Craft()) - 100)
				Expect(gap).To(BeNumerically("<", prev))
				prev = gap
			}
			Expect(prev).To(BeNumerically("<=", 1e-6))
		})
	})

	Context("with a rope", func() {
		It("ignores a slack rope", func() {
			bob = ed.AddNode(craft.V(0, 50), craft.Joint)
			_, err := ed.AddRod(anchor, bob, craft.Rope)
			Expect(err).NotTo(HaveOccurred())
			ed.Craft().Rods[0].RestLength = 100
			cfg.Gravity = craft.Vec2{}

			s := physics.New(ed.Craft(), cfg)
			for i := 0; i < cfg.Iterations; i++ {
				s.Relax()
			}
			Expect(s.Craft().Nodes[bob].Pos).To(Equal(craft.V(0, 50)))
		})

		It("keeps a swinging bob at or beyond the rest length", func() {
			bob = ed.AddNode(craft.V(100, 0), craft.Joint)
			_, err := ed.AddRod(anchor, bob, craft.Rope)
			Expect(err).NotTo(HaveOccurred())

			s := physics.New(ed.Craft(), cfg)
			for i := 0; i < 600; i++ {
				s.Step(dt)
				Expect(distance(s.Craft())).To(BeNumerically(">=", 100-1e-6))
			}
		})
	})

	Context("with a free node above the floor", func() {
		It("bounces without crossing the floor", func() {
			bob = ed.AddNode(craft.V(0, 500), craft.Joint)
			s := physics.New(ed.Craft(), cfg)

			bounced := false
			for i := 0; i < 300; i++ {
				s.Step(dt)
				n := s.Craft().Nodes[bob]
				Expect(n.Pos.Y).To(BeNumerically("<=", cfg.Floor))
				if n.Pos.Y == cfg.Floor && n.Velocity().Y < 0 {
					bounced = true
				}
			}
			Expect(bounced).To(BeTrue())
		})
	})

	Context("with a piston", func() {
		It("tracks its oscillating target over simulated time", func() {
			bob = ed.AddNode(craft.V(0, 150), craft.Joint)
			_, err := ed.AddPiston(anchor, bob, 100, 200)
			Expect(err).NotTo(HaveOccurred())
			cfg.Gravity = craft.Vec2{}

			s := physics.New(ed.Craft(), cfg)
			for s.Time() < math.Pi/2-dt {
				s.Step(dt)
			}
			rod := s.Craft().Rods[0]
			Expect(distance(s.Craft())).To(BeNumerically("~", physics.PistonTarget(rod, s.Time(), cfg), 0.5))
			Expect(distance(s.Craft())).To(BeNumerically(">", 190))
		})
	})

	Context("with a spring", func() {
		It("oscillates instead of snapping to its rest length", func() {
			bob = ed.AddNode(craft.V(0, 150), craft.Joint)
			_, err := ed.AddRod(anchor, bob, craft.Spring)
			Expect(err).NotTo(HaveOccurred())
			cfg.Gravity = craft.Vec2{}

			s := physics.New(ed.Craft(), cfg)
			s.Step(dt)
			first := distance(s.Craft())
			Expect(first).To(BeNumerically("<", 150))
			Expect(first).To(BeNumerically(">", editor.DefaultSpringLength))
		})
	})
})
