// internal/engine/slots.go
package engine

// Slot identifies one of the five BANT+ qualification fields.
type Slot string

const (
	SlotPain        Slot = "pain"
	SlotBudget      Slot = "budget"
	SlotAuthority   Slot = "authority"
	SlotTimeline    Slot = "timeline"
	SlotCompanySize Slot = "company_size"
)

// AllSlots returns the closed slot set in canonical probing order.
func AllSlots() []Slot {
	return []Slot{SlotPain, SlotBudget, SlotAuthority, SlotTimeline, SlotCompanySize}
}

// ParseSlot maps an untrusted identifier to a known slot.
func ParseSlot(s string) (Slot, bool) {
	switch Slot(s) {
	case SlotPain, SlotBudget, SlotAuthority, SlotTimeline, SlotCompanySize:
		return Slot(s), true
	}
	return "", false
}

// ObjectionType identifies a recognized category of prospect pushback.
type ObjectionType string

const (
	ObjectionPrice         ObjectionType = "price"
	ObjectionTrust         ObjectionType = "trust"
	ObjectionTiming        ObjectionType = "timing"
	ObjectionCompetitor    ObjectionType = "competitor"
	ObjectionNotInterested ObjectionType = "not_interested"
)

// AllObjectionTypes returns the closed objection set in a fixed order used
// for deterministic breakdown output.
func AllObjectionTypes() []ObjectionType {
	return []ObjectionType{
		ObjectionPrice,
		ObjectionTrust,
		ObjectionTiming,
		ObjectionCompetitor,
		ObjectionNotInterested,
	}
}

// ParseObjectionType maps an untrusted identifier to a known objection type.
func ParseObjectionType(s string) (ObjectionType, bool) {
	switch ObjectionType(s) {
	case ObjectionPrice, ObjectionTrust, ObjectionTiming, ObjectionCompetitor, ObjectionNotInterested:
		return ObjectionType(s), true
	}
	return "", false
}

// SlotValue holds the current fill of one qualification slot.
// An unfilled slot has Value == "" and zero metadata.
type SlotValue struct {
	Value        string  `json:"value,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	FilledAtTurn int     `json:"filledAtTurn,omitempty"`
	FillCount    int     `json:"fillCount,omitempty"`
}

// Filled reports whether the slot holds a value.
func (s *SlotValue) Filled() bool {
	return s != nil && s.Value != ""
}

// ObjectionRecord tracks repeated occurrences of one objection type.
type ObjectionRecord struct {
	Type            ObjectionType `json:"type"`
	OccurrenceCount int           `json:"occurrenceCount"`
	LastTurnIndex   int           `json:"lastTurnIndex"`
}
