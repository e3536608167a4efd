package vark

import "hash/fnv"

// fnv1a64 returns the 64-bit FNV-1a digest of b. spec.md §4.2 pins the exact
// algorithm (offset basis 0xcbf29ce484222325, prime 0x100000001b3), which is
// precisely what hash/fnv.New64a implements — no third-party hash library
// changes the digest, so stdlib is the correct tool here.
func fnv1a64(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b) //nolint:errcheck // hash.Hash.Write never returns an error
	return h.Sum64()
}
