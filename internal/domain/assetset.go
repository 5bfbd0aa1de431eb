package domain

import "github.com/ethereum/go-ethereum/common"

// AssetSet tracks the contract addresses touched by a transaction together with
// the confidence of each discovery. Adding an address twice keeps the highest
// confidence seen; a certain signal is never downgraded by a later heuristic one.
type AssetSet map[common.Address]Confidence

// NewAssetSet creates an empty AssetSet.
func NewAssetSet() AssetSet {
	return make(AssetSet)
}

// Add records an address at the given confidence, upgrading but never downgrading.
func (s AssetSet) Add(addr common.Address, c Confidence) {
	if existing, ok := s[addr]; ok && existing >= c {
		return
	}
	s[addr] = c
}

// Contains reports whether the address is in the set at any confidence.
func (s AssetSet) Contains(addr common.Address) bool {
	_, ok := s[addr]
	return ok
}

// ConfidenceOf returns the recorded confidence for an address.
func (s AssetSet) ConfidenceOf(addr common.Address) (Confidence, bool) {
	c, ok := s[addr]
	return c, ok
}

// Addresses returns every address recorded at or above the given confidence.
func (s AssetSet) Addresses(min Confidence) []common.Address {
	var out []common.Address
	for addr, c := range s {
		if c >= min {
			out = append(out, addr)
		}
	}
	return out
}
