package domain

// RateKind enumerates the two purchasable capabilities.
type RateKind string

const (
	RateRestore RateKind = "restore"
	RateAnimate RateKind = "animate"
)

// Rate is a purchasable bundle of capability units.
type Rate struct {
	ID     int64
	Amount int    // units in the bundle
	Cost   int    // price in RUB
	Label  string // optional marketing label shown next to the bundle
	Kind   RateKind
}

// Deeplink is a marketing attribution tag recorded on users at first contact.
type Deeplink struct {
	ID      int64
	Name    string
	Link    string
	Entries int
	Earned  int
}
