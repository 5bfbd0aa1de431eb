package resolver

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

var zeroPad = make([]byte, 12)

// scanAddressWords walks the ABI-encoded words after the 4-byte selector and
// collects every word shaped like an address: 12 zero bytes followed by 20
// payload bytes. This is a structural guess at the swap path and may include
// false positives; callers treat the result as heuristic.
func scanAddressWords(input []byte) []common.Address {
	if len(input) <= 4 {
		return nil
	}
	words := input[4:]

	var found []common.Address
	for i := 0; i+32 <= len(words); i += 32 {
		word := words[i : i+32]
		if !bytes.Equal(word[:12], zeroPad) {
			continue
		}
		addr := common.BytesToAddress(word[12:])
		if addr == (common.Address{}) {
			continue
		}
		found = append(found, addr)
	}

	if len(found) == 0 {
		return nil
	}
	return lo.Uniq(found)
}
