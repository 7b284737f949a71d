package viewer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/input"
	"github.com/Carmen-Shannon/oxy-view/engine/logging"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer/program"
)

// Gesture tuning of the decorative transform.
const (
	panScale      = 0.1
	dragScale     = 0.1
	dragDecay     = 0.9
	dragThreshold = 1e-4

	// A single frame's pinch may scale by at most this factor either way.
	maxPinchStep = 2
)

var digitKeys = [10]int{
	common.Key0, common.Key1, common.Key2, common.Key3, common.Key4,
	common.Key5, common.Key6, common.Key7, common.Key8, common.Key9,
}

func (v *viewer) Update() {
	v.input.Update()
	if v.Paused() {
		return
	}

	if v.watcher != nil {
		if path, ok := v.watcher.Drain(); ok {
			logging.Info("model changed on disk", "path", path)
			if err := v.LoadModel(path); err != nil {
				logging.Error("reload model", "path", path, "err", err)
			}
		}
	}
	v.handleKeys()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.beginFrame()
	if ctrl := v.camera.Controller(); ctrl != nil {
		ctrl.Update(v.camera, v.input)
	}
	v.applyGestures()
	v.animate()
	v.overlay.Transform = v.decor
}

func (v *viewer) handleKeys() {
	in := v.input
	ctrl := in.KeyPressed(common.KeyLeftControl) || in.KeyPressed(common.KeyRightControl)

	if ctrl && in.KeyTriggered(common.KeyO) {
		if err := v.OpenModel(); err != nil {
			logging.Error("open model", "err", err)
		}
	}
	if in.KeyTriggered(common.KeyB) {
		v.mu.Lock()
		v.showBoundaries = !v.showBoundaries
		v.mu.Unlock()
	}
	for digit, key := range digitKeys {
		if !in.KeyTriggered(key) {
			continue
		}
		if ch, ok := program.ChannelForDigit(digit); ok {
			_ = v.SelectChannel(ch)
		}
	}
}

// applyGestures moves the decorative transform: pinch scales and twists it, pan slides it, and a one-finger
// drag spins it with a velocity that decays every frame.
func (v *viewer) applyGestures() {
	in := v.input
	if pinch, ok := in.Pinch(); ok {
		v.decor.ScaleBy(common.Clamp(pinch.ScaleFactor, 1/float32(maxPinchStep), maxPinchStep))
		v.decor.Rotate(pinch.LastRotationAngle-pinch.RotationAngle, common.AxisZ)
	}
	if pan, ok := in.Pan(); ok {
		v.decor.Translate(common.Vec3{pan.DeltaX, -pan.DeltaY, 0}.Scale(panScale))
	}
	if in.TouchCount() == 1 {
		touch := in.Touch(0)
		switch touch.State {
		case input.TouchPressed:
			v.dragVelocity = 0
		case input.TouchMoved:
			axis := common.Vec3{touch.Y - touch.LastY, touch.X - touch.LastX, 0}
			v.dragAxis = v.camera.Rotation().Rotate(axis).Normalized()
			v.dragVelocity = axis.Length() * dragScale
		}
	}

	v.dragVelocity *= dragDecay
	if v.dragVelocity > dragThreshold && v.dragAxis.Length() > 0 {
		v.decor.Rotate(v.dragVelocity, v.dragAxis)
	}
}

func (v *viewer) Render() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.paused {
		return nil
	}
	if !v.frames.Built() {
		return ErrNotResized
	}

	err := v.renderFrame()
	v.state = StateIdle
	if err != nil {
		return err
	}
	v.stats.Frames++
	return nil
}

// renderFrame runs the pass sequence of one frame. Caller must hold the mutex.
func (v *viewer) renderFrame() error {
	r := v.renderer

	v.state = StatePreparingUniforms
	ambient := v.cfg.Scene.Ambient
	uniform := v.camera.Uniform([4]float32{ambient[0], ambient[1], ambient[2], 1})
	if err := r.WriteBuffer(v.globals, 0, uniform.Marshal()); err != nil {
		return fmt.Errorf("upload globals: %w", err)
	}
	view := renderer.ViewState{
		View:       uniform.View,
		PrevView:   uniform.PrevView,
		Projection: uniform.Projection,
	}
	lightPass := needsLightPass(v.channel)
	groups := []renderer.DrawGroup{v.floor, v.models}
	if lightPass {
		groups = append(groups, v.lights)
	}
	if v.showBoundaries {
		groups = append(groups, v.boundaries)
	}
	for _, g := range groups {
		if err := g.Commit(r, view); err != nil {
			return err
		}
	}
	key, err := v.bank.Bind(v.channel)
	if err != nil {
		return err
	}

	if err := r.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	v.state = StateGeometryPass
	if err := v.pass(renderer.PassDescriptor{
		Label:      "gbuffer",
		Target:     v.frames.GBuffer(),
		ClearColor: true,
		ClearDepth: true,
	}, v.floor.Draw, v.models.Draw); err != nil {
		return v.abort(err)
	}

	if lightPass {
		v.state = StateLightPass
		if err := v.pass(renderer.PassDescriptor{
			Label:      "lights",
			Target:     v.frames.Light(),
			ClearColor: true,
		}, v.lights.Draw); err != nil {
			return v.abort(err)
		}
	}

	v.state = StatePresentPass
	present := []func(renderer.Renderer) error{
		func(r renderer.Renderer) error { return r.DrawCall(key, v.quad, 1, nil) },
	}
	if v.showBoundaries {
		present = append(present, v.boundaries.Draw)
	}
	if err := v.pass(renderer.PassDescriptor{
		Label:      "present",
		ClearColor: true,
		ClearValue: [4]float64{0, 0, 0, 1},
	}, present...); err != nil {
		return v.abort(err)
	}

	if err := r.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	r.Present()
	return nil
}

// pass records one render pass running each draw in order.
func (v *viewer) pass(desc renderer.PassDescriptor, draws ...func(renderer.Renderer) error) error {
	if err := v.renderer.BeginPass(desc); err != nil {
		return fmt.Errorf("begin %s pass: %w", desc.Label, err)
	}
	for _, draw := range draws {
		if err := draw(v.renderer); err != nil {
			_ = v.renderer.EndPass()
			return fmt.Errorf("%s pass: %w", desc.Label, err)
		}
	}
	if err := v.renderer.EndPass(); err != nil {
		return fmt.Errorf("end %s pass: %w", desc.Label, err)
	}
	return nil
}

// abort drops the frame after a failed pass so the next frame can begin.
func (v *viewer) abort(err error) error {
	v.renderer.DiscardFrame()
	return err
}
