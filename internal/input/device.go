package input

import "github.com/lastdescent/actorsim/internal/core/geom"

// DeviceState is one poll of a raw input device.
type DeviceState struct {
	Move         geom.Vec2 // stick or WASD, any length
	Pointer      geom.Vec2 // world-space pointer position
	PointerValid bool      // false while the pointer is off-screen or unmapped
	AttackDown   bool
	SlotKey      int // 1-based ability key held, 0 for none
}

// Device is polled once per tick.
type Device interface {
	Poll() DeviceState
}

// DeviceFunc adapts a function to Device.
type DeviceFunc func() DeviceState

func (f DeviceFunc) Poll() DeviceState { return f() }

// DeviceAdapter turns held-button device state into Commands: attack and slot
// keys fire on the rising edge only, and the last valid pointer position is
// kept while the pointer is invalid.
type DeviceAdapter struct {
	dev        Device
	attackDown bool
	slotKey    int
	lastAim    geom.Vec2
	hasAim     bool
}

func NewDeviceAdapter(dev Device) *DeviceAdapter {
	return &DeviceAdapter{dev: dev}
}

func (a *DeviceAdapter) ReadCommand() Command {
	s := a.dev.Poll()
	cmd := Empty()

	cmd.Move = s.Move
	if s.Move.LenSq() > 1 {
		cmd.Move = s.Move.Normalized()
	}
	if s.PointerValid {
		a.lastAim, a.hasAim = s.Pointer, true
	}
	cmd.AimWorld, cmd.Aiming = a.lastAim, a.hasAim

	if s.AttackDown && !a.attackDown {
		cmd.AttackPressed = true
	}
	if s.SlotKey > 0 && s.SlotKey != a.slotKey {
		cmd.AttackPressed = true
		cmd.Slot = s.SlotKey - 1
	}
	a.attackDown = s.AttackDown
	a.slotKey = s.SlotKey
	return cmd
}
