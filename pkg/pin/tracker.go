package pin

// DefaultLength is the number of digits in a standard TapMeet PIN.
const DefaultLength = 4

// emptySlot marks an unfilled digit position.
const emptySlot = -1

// Tracker collects digit-by-digit PIN entry into a fixed number of slots.
type Tracker struct {
	slots []int8
}

// NewTracker creates a tracker with the given number of digit slots.
// Lengths below one fall back to DefaultLength.
func NewTracker(length int) *Tracker {
	if length < 1 {
		length = DefaultLength
	}
	slots := make([]int8, length)
	for i := range slots {
		slots[i] = emptySlot
	}
	return &Tracker{slots: slots}
}

// Append places d into the first empty slot and reports whether it was
// stored. A full tracker or a non-digit rune leaves the state unchanged.
func (t *Tracker) Append(d rune) bool {
	if d < '0' || d > '9' {
		return false
	}
	for i, s := range t.slots {
		if s == emptySlot {
			t.slots[i] = int8(d - '0')
			return true
		}
	}
	return false
}

// RemoveLast clears the last filled slot and reports whether one was cleared.
func (t *Tracker) RemoveLast() bool {
	for i := len(t.slots) - 1; i >= 0; i-- {
		if t.slots[i] != emptySlot {
			t.slots[i] = emptySlot
			return true
		}
	}
	return false
}

// Clear empties every slot.
func (t *Tracker) Clear() {
	for i := range t.slots {
		t.slots[i] = emptySlot
	}
}

// Complete reports whether every slot holds a digit.
func (t *Tracker) Complete() bool {
	for _, s := range t.slots {
		if s == emptySlot {
			return false
		}
	}
	return true
}

// Count returns the number of filled slots.
func (t *Tracker) Count() int {
	n := 0
	for _, s := range t.slots {
		if s != emptySlot {
			n++
		}
	}
	return n
}

// Len returns the total number of slots.
func (t *Tracker) Len() int {
	return len(t.slots)
}

// String returns the filled digits concatenated in entry order.
func (t *Tracker) String() string {
	buf := make([]byte, 0, len(t.slots))
	for _, s := range t.slots {
		if s != emptySlot {
			buf = append(buf, '0'+byte(s))
		}
	}
	return string(buf)
}
