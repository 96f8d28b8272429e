// simpleScene drops a random pile of spheres, boxes and tetrahedra on the ground and
// logs collisions until every body sleeps or the step budget runs out.
package main

import (
	"flag"
	"log/slog"
	"os"

	"cogentcore.org/core/base/randx"
	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/actor"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	configPath := flag.String("config", "", "TOML world configuration, defaults are used when empty")
	seed := flag.Int64("seed", 1, "random seed of the scene")
	steps := flag.Int("steps", 600, "maximum number of steps")
	bodies := flag.Int("bodies", 20, "number of falling bodies")
	debug := flag.Bool("debug", false, "log every contact event")
	flag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "impulse",
	})
	logger := slog.New(handler)

	config := impulse.DefaultConfig()
	if *configPath != "" {
		loaded, err := impulse.LoadConfig(*configPath)
		if err != nil {
			logger.Error("loading config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		config = loaded
	}

	world := impulse.NewWorld(config, logger)
	world.AddBody(impulse.NewGround(mgl64.Vec3{0, 1, 0}, 0))

	region := actor.AABB{Min: mgl64.Vec3{-4, 2, -4}, Max: mgl64.Vec3{4, 12, 4}}
	for _, body := range impulse.RandomBodies(randx.NewSysRand(*seed), *bodies, region) {
		world.AddBody(body)
	}

	asleep := 0
	world.Events.Subscribe(impulse.COLLISION_ENTER, func(event impulse.Event) {
		e := event.(impulse.CollisionEnterEvent)
		logger.Debug("collision", "a", e.BodyA.Id, "b", e.BodyB.Id, "contacts", e.Contacts)
	})
	world.Events.Subscribe(impulse.ON_SLEEP, func(event impulse.Event) {
		asleep++
		logger.Info("asleep", "body", event.(impulse.SleepEvent).Body.Id, "sleeping", asleep)
	})
	world.Events.Subscribe(impulse.ON_WAKE, func(event impulse.Event) {
		asleep--
		logger.Info("awake", "body", event.(impulse.WakeEvent).Body.Id, "sleeping", asleep)
	})

	const dt = 1.0 / 60.0
	step := 0
	for ; step < *steps && asleep < *bodies; step++ {
		world.Step(dt)
	}

	logger.Info("done", "steps", step, "sleeping", asleep, "bodies", *bodies)
	for _, body := range world.Bodies {
		if body.BodyType == actor.BodyTypeStatic {
			continue
		}
		p := body.Transform.Position
		logger.Debug("final position", "body", body.Id, "shape", body.Shape.Kind(), "x", p.X(), "y", p.Y(), "z", p.Z())
	}
}
