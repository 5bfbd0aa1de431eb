package resolver

import "encoding/hex"

// MethodKind groups known router methods by the shape of the exchange.
type MethodKind int

const (
	// KindBuy methods take native coin in and send tokens out.
	KindBuy MethodKind = iota
	// KindSell methods take tokens in and send native coin out.
	KindSell
	// KindSwap methods exchange one token for another.
	KindSwap
)

// Method is one known swap-router method signature.
type Method struct {
	Name string
	Kind MethodKind
}

// knownMethods maps 4-byte selectors (hex, no 0x) to Uniswap V2 router methods.
var knownMethods = map[string]Method{
	"7ff36ab5": {Name: "swapExactETHForTokens", Kind: KindBuy},
	"fb3bdb41": {Name: "swapETHForExactTokens", Kind: KindBuy},
	"b6f9de95": {Name: "swapExactETHForTokensSupportingFeeOnTransferTokens", Kind: KindBuy},
	"18cbafe5": {Name: "swapExactTokensForETH", Kind: KindSell},
	"4a25d94a": {Name: "swapTokensForExactETH", Kind: KindSell},
	"791ac947": {Name: "swapExactTokensForETHSupportingFeeOnTransferTokens", Kind: KindSell},
	"38ed1739": {Name: "swapExactTokensForTokens", Kind: KindSwap},
	"8803dbee": {Name: "swapTokensForExactTokens", Kind: KindSwap},
	"5c11d795": {Name: "swapExactTokensForTokensSupportingFeeOnTransferTokens", Kind: KindSwap},
}

// LookupMethod resolves a call input's 4-byte selector against the known-method
// table. Inputs shorter than a selector are never a match.
func LookupMethod(input []byte) (sig string, m Method, ok bool) {
	if len(input) < 4 {
		return "", Method{}, false
	}
	sig = "0x" + hex.EncodeToString(input[:4])
	m, ok = knownMethods[hex.EncodeToString(input[:4])]
	return sig, m, ok
}

// KindOf returns the method kind for a selector string like "0x7ff36ab5".
func KindOf(sig string) (MethodKind, bool) {
	if len(sig) != 10 || sig[:2] != "0x" {
		return 0, false
	}
	m, ok := knownMethods[sig[2:]]
	return m.Kind, ok
}
