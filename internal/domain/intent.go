package domain

// Intent is the inferred purpose of a transaction relative to one wallet/token pair.
type Intent string

const (
	IntentBuy     Intent = "buy"
	IntentSell    Intent = "sell"
	IntentSwap    Intent = "swap"
	IntentUnknown Intent = "unknown"
)

// Confidence tags how an involved asset was discovered: receipt-log scanning is
// authoritative, raw call-input scanning is a structural guess.
type Confidence int

const (
	ConfidenceHeuristic Confidence = iota
	ConfidenceCertain
)

func (c Confidence) String() string {
	if c == ConfidenceCertain {
		return "certain"
	}
	return "heuristic"
}
