package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-ltc-raytracer/pkg/core"
)

func TestCameraForward(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: 1.0,
		VFov:        45.0,
	})

	expected := core.NewVec3(0, 0, -1)
	if camera.Forward().Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected forward direction %v, got %v", expected, camera.Forward())
	}
	// The image centre looks straight ahead
	if d := camera.GetRay(0.5, 0.5).Direction; d.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Centre ray direction %v, want %v", d, expected)
	}
}

func TestCameraFieldOfView(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Center:      core.NewVec3(278, 278, -800),
		LookAt:      core.NewVec3(278, 278, 0),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: 2.0,
		VFov:        90.0,
	})

	// Top edge centre is 45 degrees above the axis
	top := camera.GetRay(0.5, 1).Direction
	if angle := math.Acos(top.Dot(camera.Forward())) * 180 / math.Pi; math.Abs(angle-45) > 1e-9 {
		t.Errorf("Expected 45 degree half angle, got %f", angle)
	}
	if top.Y <= 0 {
		t.Errorf("t=1 should point up, got %v", top)
	}

	// Right edge is atan(2) off axis and towards +X when looking down +Z with +Y up
	right := camera.GetRay(1, 0.5).Direction
	if angle := math.Acos(right.Dot(camera.Forward())); math.Abs(angle-math.Atan(2)) > 1e-9 {
		t.Errorf("Expected horizontal half angle atan(2), got %f", angle)
	}
	if right.X >= 0 {
		t.Errorf("Right edge should point to -X for a camera looking down +Z, got %v", right)
	}
}
