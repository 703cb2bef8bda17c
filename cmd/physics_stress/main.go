// Stress test timing the physics step as the number of bodies in a pit grows
package main

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalphys/internal/physics"
)

const (
	pitHalf    = 3.0
	stressTick = 300
)

func main() {
	testCounts := []int{8, 16, 32, 64, 128}

	for _, count := range testCounts {
		testPit(count)
	}
}

func pitQuads() []physics.StaticQuad {
	up := rl.Vector3{Y: 1}
	quads := []physics.StaticQuad{
		{Quad: *physics.NewQuadFacing(rl.Vector3{}, up, rl.Vector3{X: 1}, pitHalf, pitHalf, 0)},
	}
	walls := []struct{ center, normal rl.Vector3 }{
		{rl.Vector3{X: -pitHalf, Y: 5}, rl.Vector3{X: 1}},
		{rl.Vector3{X: pitHalf, Y: 5}, rl.Vector3{X: -1}},
		{rl.Vector3{Y: 5, Z: -pitHalf}, rl.Vector3{Z: 1}},
		{rl.Vector3{Y: 5, Z: pitHalf}, rl.Vector3{Z: -1}},
	}
	for _, wall := range walls {
		quads = append(quads, physics.StaticQuad{Quad: *physics.NewQuadFacing(wall.center, wall.normal, up, 5, pitHalf, 0)})
	}
	return quads
}

func testPit(count int) {
	cfg := physics.DefaultConfig()
	cfg.DynamicCapacity = count
	cfg.ManifoldCapacity = 64

	w, err := physics.NewPhysicsWorld(cfg, pitQuads(), nil)
	if err != nil {
		fmt.Printf("%4d bodies: ERROR: %v\n", count, err)
		return
	}

	rng := rand.New(rand.NewSource(42)) // Consistent results
	for i := 0; i < count; i++ {
		position := rl.Vector3{
			X: rng.Float32()*(2*pitHalf-1) - pitHalf + 0.5,
			Y: 1 + float32(i)*0.6,
			Z: rng.Float32()*(2*pitHalf-1) - pitHalf + 0.5,
		}
		var shape physics.Shape = physics.NewBox(rl.Vector3{X: 0.25, Y: 0.25, Z: 0.25})
		if i%3 == 0 {
			shape = physics.NewSphere(0.25)
		}
		if _, err := w.AddBody(physics.NewCollider(shape, 0.5, 0), 1, physics.NewTransform(position, rl.QuaternionIdentity()), physics.LayerTangible); err != nil {
			fmt.Printf("%4d bodies: ERROR: %v\n", count, err)
			return
		}
	}

	var worst time.Duration
	maxDropped := 0
	start := time.Now()
	for i := 0; i < stressTick; i++ {
		tickStart := time.Now()
		w.Step()
		worst = max(worst, time.Since(tickStart))
		maxDropped = max(maxDropped, w.Stats().DroppedManifolds)
	}
	avg := time.Since(start) / stressTick
	stats := w.Stats()

	fmt.Printf("%4d bodies: avg %8v | worst %8v | %2d manifolds | %3d dropped | %3d asleep\n",
		count, avg.Round(time.Microsecond), worst.Round(time.Microsecond),
		stats.ActiveManifolds, maxDropped, stats.Sleeping)
}
