// Package viewer renders the simulation in a 3D debug window. It is a
// read-only observer: all state flows one way, from simulation snapshots to
// the screen.
package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
	"github.com/forbiddenlink/ocean-simulator-sub000/config"
	"github.com/forbiddenlink/ocean-simulator-sub000/sim"
)

// typeColors maps each creature type to its render color.
var typeColors = [components.NumCreatureTypes]rl.Color{
	rl.SkyBlue,   // fish
	rl.Gray,      // shark
	rl.LightGray, // dolphin
	rl.Pink,      // jellyfish
	rl.Brown,     // ray
	rl.DarkGreen, // turtle
	rl.Orange,    // crab
	rl.Magenta,   // starfish
	rl.Purple,    // sea_urchin
	rl.DarkBlue,  // whale
}

// typeRadii is the render size per type, in world units.
var typeRadii = [components.NumCreatureTypes]float32{
	0.8, 4, 3, 1.5, 2.5, 2, 0.8, 0.8, 0.7, 8,
}

// Viewer owns the window, camera, and per-frame snapshot buffer.
type Viewer struct {
	sim    *sim.Simulation
	camera rl.Camera3D

	paused bool
	speed  float32 // simulation ticks per frame

	views []sim.CreatureView
}

// New opens the render window and positions the camera above the volume.
func New(s *sim.Simulation) *Viewer {
	cfg := config.Cfg()

	rl.InitWindow(int32(cfg.Viewer.Width), int32(cfg.Viewer.Height), "Ocean Simulator")
	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	return &Viewer{
		sim:   s,
		speed: 1,
		camera: rl.Camera3D{
			Position:   rl.Vector3{X: 0, Y: 120, Z: float32(cfg.World.HalfBreadth) * 1.6},
			Target:     rl.Vector3{X: 0, Y: float32(cfg.World.FloorDepth) / 2, Z: 0},
			Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
			Fovy:       55,
			Projection: rl.CameraPerspective,
		},
	}
}

// Run drives the frame loop until the window closes or maxTicks is reached.
func (v *Viewer) Run(maxTicks int64) {
	for !rl.WindowShouldClose() {
		if !v.paused {
			for i := float32(0); i < v.speed; i++ {
				v.sim.Step()
			}
		}

		v.draw()

		if maxTicks > 0 && v.sim.Tick() >= maxTicks {
			break
		}
	}
}

// Close releases the window.
func (v *Viewer) Close() {
	rl.CloseWindow()
}

func (v *Viewer) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 6, G: 18, B: 38, A: 255})

	rl.UpdateCamera(&v.camera, rl.CameraOrbital)

	rl.BeginMode3D(v.camera)
	v.drawWorldBox()
	v.drawCreatures()
	rl.EndMode3D()

	v.drawHUD()
	rl.EndDrawing()
}

// drawWorldBox outlines the simulated volume and the sea floor.
func (v *Viewer) drawWorldBox() {
	cfg := config.Cfg()
	w := float32(cfg.World.HalfWidth) * 2
	b := float32(cfg.World.HalfBreadth) * 2
	floor := float32(cfg.World.FloorDepth)
	surface := float32(cfg.World.SurfaceDepth)
	h := surface - floor

	center := rl.Vector3{X: 0, Y: floor + h/2, Z: 0}
	rl.DrawCubeWires(center, w, h, b, rl.Color{R: 40, G: 80, B: 120, A: 160})

	rl.DrawPlane(rl.Vector3{X: 0, Y: floor, Z: 0}, rl.Vector2{X: w, Y: b},
		rl.Color{R: 30, G: 34, B: 26, A: 255})
}

func (v *Viewer) drawCreatures() {
	v.views = v.sim.Snapshot(v.views[:0])

	for i := range v.views {
		cv := &v.views[i]
		pos := rl.Vector3{X: cv.Pos.X, Y: cv.Pos.Y, Z: cv.Pos.Z}
		color := typeColors[cv.Type]

		switch cv.Mode {
		case components.ModeAttacking:
			color = rl.Red
		case components.ModeFleeing:
			color = rl.Yellow
		}

		rl.DrawSphere(pos, typeRadii[cv.Type], color)

		// Heading tick for fast swimmers.
		if speedSq := cv.Vel.LenSq(); speedSq > 1 {
			dir := cv.Vel.Normalized().Scale(typeRadii[cv.Type] * 2.5)
			tip := rl.Vector3{X: cv.Pos.X + dir.X, Y: cv.Pos.Y + dir.Y, Z: cv.Pos.Z + dir.Z}
			rl.DrawLine3D(pos, tip, color)
		}
	}
}

func (v *Viewer) drawHUD() {
	counts := v.sim.Counts()
	total := 0
	for _, n := range counts {
		total += n
	}

	rl.DrawText(fmt.Sprintf("tick %d  t=%.0fs  alive %d", v.sim.Tick(), v.sim.Elapsed(), total),
		10, 10, 20, rl.RayWhite)

	y := int32(36)
	for t, n := range counts {
		if n == 0 {
			continue
		}
		rl.DrawText(fmt.Sprintf("%-10s %d", components.CreatureType(t).String(), n),
			10, y, 16, typeColors[t])
		y += 18
	}

	panelY := float32(rl.GetScreenHeight() - 46)
	label := "Pause"
	if v.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: 10, Y: panelY, Width: 90, Height: 32}, label) {
		v.paused = !v.paused
	}
	v.speed = gui.SliderBar(rl.Rectangle{X: 160, Y: panelY, Width: 180, Height: 32},
		"speed", fmt.Sprintf("%.0fx", v.speed), v.speed, 1, 10)

	rl.DrawFPS(int32(rl.GetScreenWidth())-90, 10)
}
