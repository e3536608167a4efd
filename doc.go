// Package vark implements the Vark archive format: a single-file
// container that bundles many input files behind an appendable trailing
// table, with per-entry LZ4 compression and an optional sharded mode for
// fast random-access partial decompression.
//
// The library is organised into several files for clarity:
//
//	options.go    – open flags, append options, format constants
//	errors.go     – error kinds
//	hash.go       – FNV-1a digest of a byte range
//	byteio.go     – little-endian primitive read/write helpers
//	compress.go   – lz4 compress/decompress/bound adapters
//	entry.go      – in-memory Entry, plain & sharded payload codec
//	shardindex.go – shard header parsing & partial-range decode
//	archive.go    – Archive struct, path normalisation, lookup
//	create.go     – bootstrap a new empty archive
//	load.go       – open an existing archive, read table + sidecar
//	append.go     – append protocol (rewrite table, patch header)
//	read.go       – read dispatch: mmap vs buffered, full & partial
//	close.go      – release mmap, handle, scratch buffers
//
// See cmd/vark for the command-line front end.
package vark
