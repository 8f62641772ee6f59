// Package hash provides the checksum used for on-disk artifact integrity.
//
// All artifacts checksum their payload with CRC32-Castagnoli (CRC32C):
// hardware accelerated on modern CPUs and the same choice made by iSCSI,
// RocksDB and friends.
package hash
