package main

import (
	"fmt"
	"log"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"portalphys/internal/audio"
	"portalphys/internal/config"
	"portalphys/internal/physics"
	"portalphys/internal/render"
	"portalphys/internal/scenario"
)

const spawnDistance = 3.0

type Viewer struct {
	cfg      *config.Config
	file     *scenario.File
	inst     *scenario.Instance
	camera   *render.FlyCamera
	renderer *render.Renderer
	panel    *render.Panel
	impacts  *audio.Impacts
	portals  [2]physics.Portal

	accumulator float32
	spawned     int
	stepMs      float64
}

func main() {
	var configFile string
	rootCmd := &cobra.Command{
		Use:          "portalview [scenario]",
		Short:        "interactive 3D viewer for portal physics scenarios",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configFile != "" {
				loaded, err := config.Load(configFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			name := cfg.Scenario
			if len(args) > 0 {
				name = args[0]
			}
			file, err := scenario.Resolve(name)
			if err != nil {
				return err
			}

			v := &Viewer{
				cfg:      cfg,
				file:     file,
				camera:   render.NewFlyCamera(rl.Vector3{X: 6, Y: 5, Z: 10}, rl.Vector3{Y: 1}),
				renderer: render.NewRenderer(render.Options{ShowContacts: cfg.Viewer.ShowContacts}),
				panel:    render.NewPanel(),
				impacts:  audio.NewImpacts(),
			}
			if err := v.reset(); err != nil {
				return err
			}
			v.Run()
			return nil
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (v *Viewer) reset() error {
	inst, err := v.file.Build(v.cfg.Physics)
	if err != nil {
		return err
	}
	v.inst = inst
	v.impacts.Attach(inst.World)
	v.portals = inst.World.Scene.Portals.Portals
	v.accumulator = 0
	v.renderer.Options.Selected = 0
	return nil
}

func (v *Viewer) Run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(v.cfg.Viewer.Width, v.cfg.Viewer.Height, "portalview: "+v.file.Name)
	defer rl.CloseWindow()
	rl.SetTargetFPS(v.cfg.Viewer.TargetFPS)
	render.ApplyStyle()
	v.impacts.Load()
	defer v.impacts.Close()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()
	}
}

func (v *Viewer) Update() {
	deltaTime := rl.GetFrameTime()
	v.camera.Update(deltaTime)

	if rl.IsKeyPressed(rl.KeySpace) {
		v.panel.Paused = !v.panel.Paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := v.reset(); err != nil {
			log.Printf("Viewer: reset failed: %v", err)
		}
	}
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		v.pick()
	}

	cam := v.camera.GetRaylibCamera()
	v.impacts.Play(audio.NewListener(cam.Position, rl.Vector3Subtract(cam.Target, cam.Position), cam.Up))

	if v.panel.Paused {
		return
	}
	// fixed step, capped so a slow frame cannot spiral
	dt := v.cfg.Physics.FixedDeltaTime
	v.accumulator = min(v.accumulator+deltaTime*v.panel.Speed, 8*dt)
	for v.accumulator >= dt {
		v.step()
		v.accumulator -= dt
	}
}

func (v *Viewer) step() {
	start := time.Now()
	v.inst.World.Step()
	v.stepMs = float64(time.Since(start).Microseconds()) / 1000
}

// pick selects the body under the mouse cursor
func (v *Viewer) pick() {
	// the panel owns its own clicks
	if rl.GetMouseX() > int32(rl.GetScreenWidth()-240) {
		return
	}
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), v.camera.GetRaylibCamera())
	hit, ok := v.inst.World.Raycast(ray, physics.LayerAll, 100, true)
	if !ok || v.inst.World.Body(hit.Object) == nil {
		v.renderer.Options.Selected = 0
		return
	}
	v.renderer.Options.Selected = hit.Object
}

func (v *Viewer) spawnBox() {
	cam := v.camera.GetRaylibCamera()
	forward := rl.Vector3Normalize(rl.Vector3Subtract(cam.Target, cam.Position))
	position := rl.Vector3Add(cam.Position, rl.Vector3Scale(forward, spawnDistance))

	collider := physics.NewCollider(physics.NewBox(rl.Vector3{X: 0.25, Y: 0.25, Z: 0.25}), 0.5, 0.1)
	h, err := v.inst.World.AddBody(collider, 1, physics.NewTransform(position, rl.QuaternionIdentity()), physics.LayerTangible|physics.LayerGrabbable)
	if err != nil {
		log.Printf("Viewer: spawn failed: %v", err)
		return
	}
	v.spawned++
	v.inst.Colors[h] = "SkyBlue"
}

func (v *Viewer) togglePortals() {
	world := v.inst.World
	if world.Scene.IsPortalOpen() {
		world.ClosePortal(0)
		world.ClosePortal(1)
		return
	}
	for i, p := range v.portals {
		if p.Open {
			world.SetPortal(i, p.Transform, p.Room, p.Velocity)
		}
	}
}

func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(18, 18, 24, 255))

	cam := v.camera.GetRaylibCamera()
	aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())
	rl.BeginMode3D(cam)
	v.renderer.Draw(v.inst, cam, aspect)
	rl.EndMode3D()

	act := v.panel.Draw(&v.renderer.Options, v.inst.World, v.file.Name)
	switch {
	case act.Step:
		v.panel.Paused = true
		v.step()
	case act.Reset:
		if err := v.reset(); err != nil {
			log.Printf("Viewer: reset failed: %v", err)
		}
	case act.SpawnBox:
		v.spawnBox()
	case act.TogglePortal:
		v.togglePortals()
	}

	rl.DrawFPS(10, 10)
	rl.DrawText(fmt.Sprintf("step %.2f ms  culled %d", v.stepMs, v.renderer.Culled), 10, 32, 14, rl.LightGray)
	if name := v.selectedName(); name != "" {
		rl.DrawText("selected: "+name, 10, 50, 14, rl.Yellow)
	}
	rl.EndDrawing()
}

func (v *Viewer) selectedName() string {
	h := v.renderer.Options.Selected
	if h == 0 {
		return ""
	}
	for name, handle := range v.inst.Bodies {
		if handle == h {
			return name
		}
	}
	return fmt.Sprintf("%#x", uint32(h))
}
