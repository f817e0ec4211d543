// Package flashkv drives a FlashKV server over its line-oriented,
// CRLF-terminated TCP protocol.
//
// FlashKV is a Redis-like in-memory key-value store. Each request opens a
// fresh connection, writes one command line, reads one response line, and
// closes. The command set covers PING, GET, SET, DEL, INCR, DECR, LPUSH,
// LPOP, EXISTS, EXPIRE, TTL, KEYS, FLUSHDB, plus raw passthrough for
// anything the server understands that this package does not.
//
// Response lines beginning with "-ERR", "-", "ERROR", or a case-insensitive
// "ERR" fail the request. Lines containing "nil" or "not found" classify as
// a successful empty lookup: the exchange worked, the key just was not
// there.
package flashkv
