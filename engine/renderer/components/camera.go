package components

import (
	"github.com/spaghettifunk/lumen/engine/math"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

/**
 * @brief Represents a perspective camera used to render the scene.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles (pitch, yaw, roll).
	 * NOTE: Do not set this directly, use SetEulerRotation() instead
	 * so the view matrix is recalculated when needed.
	 */
	EulerRotation math.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/** @brief The cached view matrix. Use GetView() to read it. */
	ViewMatrix math.Mat4

	/** @brief Vertical field of view in radians. */
	FOV    float32
	Near   float32
	Far    float32
	Width  float32
	Height float32

	world      math.Mat4
	pickingRay math.Ray
}

func NewCamera(width, height float32) *Camera {
	camera := &Camera{
		FOV:    math.DegToRad(45),
		Near:   0.1,
		Far:    1000,
		Width:  width,
		Height: height,
	}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = math.NewVec3Zero()
	c.Position = math.NewVec3Zero()
	c.IsDirty = true
	c.ViewMatrix = math.NewMat4Identity()
	c.world = math.NewMat4Identity()
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetEulerRotation() math.Vec3 {
	return c.EulerRotation
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.EulerRotation = rotation
	c.IsDirty = true
}

// SetResolution updates the aspect ratio used by the projection.
func (c *Camera) SetResolution(width, height float32) {
	c.Width = width
	c.Height = height
}

func (c *Camera) rebuild() {
	if !c.IsDirty {
		return
	}
	rotation := math.NewQuatFromEuler(c.EulerRotation.X, c.EulerRotation.Y, c.EulerRotation.Z).ToMat4()
	translation := math.NewMat4Translation(c.Position)
	c.world = rotation.Mul(translation)
	c.ViewMatrix = c.world.Inverse()
	c.IsDirty = false
}

func (c *Camera) GetView() math.Mat4 {
	c.rebuild()
	return c.ViewMatrix
}

func (c *Camera) GetProjection() math.Mat4 {
	aspect := float32(1)
	if c.Height > 0 {
		aspect = c.Width / c.Height
	}
	return math.NewMat4Perspective(c.FOV, aspect, c.Near, c.Far)
}

func (c *Camera) GetViewProjection() math.Mat4 {
	view := c.GetView()
	return view.Mul(c.GetProjection())
}

func (c *Camera) Forward() math.Vec3 {
	c.rebuild()
	return math.NewVec3(-c.world.Data[8], -c.world.Data[9], -c.world.Data[10]).Normalized()
}

func (c *Camera) Backward() math.Vec3 {
	return c.Forward().MulScalar(-1)
}

func (c *Camera) Right() math.Vec3 {
	c.rebuild()
	return math.NewVec3(c.world.Data[0], c.world.Data[1], c.world.Data[2]).Normalized()
}

func (c *Camera) Left() math.Vec3 {
	return c.Right().MulScalar(-1)
}

func (c *Camera) Up() math.Vec3 {
	c.rebuild()
	return math.NewVec3(c.world.Data[4], c.world.Data[5], c.world.Data[6]).Normalized()
}

func (c *Camera) move(direction math.Vec3, amount float32) {
	c.Position = c.Position.Add(direction.MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveForward(amount float32) {
	c.move(c.Forward(), amount)
}

func (c *Camera) MoveBackward(amount float32) {
	c.move(c.Backward(), amount)
}

func (c *Camera) MoveLeft(amount float32) {
	c.move(c.Left(), amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.move(c.Right(), amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.move(math.NewVec3Up(), amount)
}

func (c *Camera) MoveDown(amount float32) {
	c.move(math.NewVec3Up(), -amount)
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation.Y += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation.X += amount

	// Clamp to avoid Gimbal lock.
	limit := float32(1.55334306) // 89 degrees
	c.EulerRotation.X = math.Clamp(c.EulerRotation.X, -limit, limit)

	c.IsDirty = true
}

// IsInViewFrustum tests a world-space bounding box.
func (c *Camera) IsInViewFrustum(box math.Extents3D) bool {
	return math.NewFrustum(c.GetViewProjection()).IntersectsAABB(box)
}

// WorldToScreenPoint projects a point to pixels, origin top left. The
// second result is false for points behind the camera.
func (c *Camera) WorldToScreenPoint(point math.Vec3) (math.Vec2, bool) {
	clip := point.ToVec4(1).Transform(c.GetViewProjection())
	if clip.W <= 0 {
		return math.Vec2{}, false
	}
	x := (clip.X/clip.W*0.5 + 0.5) * c.Width
	y := (0.5 - clip.Y/clip.W*0.5) * c.Height
	return math.NewVec2(x, y), true
}

// ScreenToRay builds a world-space ray through a pixel.
func (c *Camera) ScreenToRay(x, y float32) math.Ray {
	inverse := c.GetViewProjection().Inverse()
	ndcX := x/c.Width*2 - 1
	ndcY := 1 - y/c.Height*2
	unproject := func(z float32) math.Vec3 {
		p := math.NewVec4(ndcX, ndcY, z, 1).Transform(inverse)
		return math.NewVec3(p.X/p.W, p.Y/p.W, p.Z/p.W)
	}
	near := unproject(-1)
	far := unproject(1)
	return math.Ray{Origin: near, Direction: far.Sub(near).Normalized()}
}

// Pick stores the ray through a pixel for the picking overlay.
func (c *Camera) Pick(x, y float32) math.Ray {
	c.pickingRay = c.ScreenToRay(x, y)
	return c.pickingRay
}

func (c *Camera) PickingRay() math.Ray {
	return c.pickingRay
}
