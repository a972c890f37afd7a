//Command vkrs opens a window and renders the models listed in a config file
package main

import (
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/andewx/vkrs"
	"github.com/andewx/vkrs/internal/asset"
	"github.com/andewx/vkrs/internal/camera"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
)

//Model nudge speed for the arrow keys, units per second
const nudgeSpeed = 2.0

func init() {
	//glfw and the frame loop must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	config_path := flag.String("config", "", "path to a toml config, defaults are used when empty")
	profile_mode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	flag.Parse()

	stop := func() {}
	switch *profile_mode {
	case "cpu":
		stop = profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop
	case "mem":
		stop = profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop
	}
	defer stop()

	cfg := vkrs.DefaultConfig()
	if *config_path != "" {
		var err error
		if cfg, err = vkrs.LoadConfig(*config_path); err != nil {
			vkrs.Fatal(err)
		}
	}

	logger, err := vkrs.NewFileLogger(cfg.LogDir)
	if err != nil {
		vkrs.Fatal(err)
	}
	defer logger.Close()

	if err := run(cfg, logger); err != nil {
		vkrs.Fatal(err, logger.Close, stop)
	}
}

func run(cfg *vkrs.Config, logger *vkrs.CoreLogger) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.AppName, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	if err := vkrs.InitLoader(); err != nil {
		return err
	}

	renderer, err := vkrs.NewRenderer(cfg, window, logger)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	loader, err := asset.NewLoader(cfg.MaxModels)
	if err != nil {
		return err
	}
	for _, mc := range cfg.Models {
		mesh, tex, err := loader.Model(mc)
		if err != nil {
			return err
		}
		handle, err := renderer.LoadModel(mesh, tex)
		if err != nil {
			return err
		}
		model, _ := renderer.Model(handle)
		model.Position = mgl32.Vec3(mc.Position)
		model.Rotation = vkrs.Rotation{Yaw: mc.Yaw, Pitch: mc.Pitch, Roll: mc.Roll}
	}
	//Decoded data lives on the GPU now
	loader.Purge()

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		renderer.WindowResized(width, height)
	})

	cam := camera.New(renderer.Camera, renderer.Target)
	last := time.Now()
	fps_start, fps_frames := last, 0
	last_x, last_y := window.GetCursorPos()

	for !window.ShouldClose() {
		if renderer.FrameSync().Minimized() {
			glfw.WaitEvents()
		} else {
			glfw.PollEvents()
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		x, y := window.GetCursorPos()
		if window.GetMouseButton(glfw.MouseButtonRight) == glfw.Press {
			cam.Look(float32(x-last_x), float32(y-last_y))
		}
		last_x, last_y = x, y

		handleKeys(window, renderer, cam, dt)
		renderer.Camera, renderer.Target, renderer.Up = cam.Position, cam.Target(), cam.Up()

		if err := renderer.DrawFrame(); err != nil {
			return err
		}

		fps_frames++
		if elapsed := now.Sub(fps_start); elapsed >= time.Second {
			window.SetTitle(fmt.Sprintf("%s | %s | %.0f fps | camera %.1f %.1f %.1f", cfg.AppName, renderer.Device().Name(),
				float64(fps_frames)/elapsed.Seconds(), cam.Position.X(), cam.Position.Y(), cam.Position.Z()))
			fps_start, fps_frames = now, 0
		}
	}

	return renderer.WaitIdle()
}

var moveKeys = map[glfw.Key]camera.Direction{
	glfw.KeyW:     camera.Forward,
	glfw.KeyS:     camera.Backward,
	glfw.KeyA:     camera.Left,
	glfw.KeyD:     camera.Right,
	glfw.KeySpace: camera.Up,
	glfw.KeyC:     camera.Down,
}

func handleKeys(window *glfw.Window, renderer *vkrs.Renderer, cam *camera.Camera, dt float32) {
	pressed := func(k glfw.Key) bool { return window.GetKey(k) == glfw.Press }

	if pressed(glfw.KeyEscape) {
		window.SetShouldClose(true)
	}
	for key, dir := range moveKeys {
		if pressed(key) {
			cam.Move(dir, dt)
		}
	}
	if pressed(glfw.KeyQ) {
		cam.Turn(-1, 0, dt)
	}
	if pressed(glfw.KeyE) {
		cam.Turn(1, 0, dt)
	}
	if pressed(glfw.KeyR) {
		cam.Reset()
	}

	handles := renderer.Models()
	if len(handles) == 0 {
		return
	}
	model, _ := renderer.Model(handles[0])
	step := nudgeSpeed * dt
	if pressed(glfw.KeyLeft) {
		model.Position[0] -= step
	}
	if pressed(glfw.KeyRight) {
		model.Position[0] += step
	}
	if pressed(glfw.KeyUp) {
		model.Position[2] -= step
	}
	if pressed(glfw.KeyDown) {
		model.Position[2] += step
	}
}
