package token

// Slot names one of the six places a token of the chain is held.
type Slot int

const (
	UserSlot Slot = iota
	XboxUserSlot
	XstsXboxSlot
	XstsHaloSlot
	SpartanSlot
	ClearanceSlot
)

var slotNames = [...]string{
	UserSlot:      "UserToken",
	XboxUserSlot:  "XboxUserToken",
	XstsXboxSlot:  "XstsXboxToken",
	XstsHaloSlot:  "XstsHaloToken",
	SpartanSlot:   "SpartanToken",
	ClearanceSlot: "ClearanceToken",
}

// Slots lists every slot in chain order.
func Slots() []Slot {
	return []Slot{UserSlot, XboxUserSlot, XstsXboxSlot, XstsHaloSlot, SpartanSlot, ClearanceSlot}
}

func (s Slot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return "UnknownToken"
	}
	return slotNames[s]
}

// TracksExpiry reports whether the store checks an expiry date for the slot.
func (s Slot) TracksExpiry() bool {
	switch s {
	case XboxUserSlot, XstsXboxSlot, XstsHaloSlot, SpartanSlot:
		return true
	}
	return false
}
