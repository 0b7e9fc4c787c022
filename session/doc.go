// Package session holds the signed-in user's token for apikit clients.
//
// A Manager keeps the current token in memory for lock-free reads on the request
// path and mirrors it into a persistent Store: memory, a local file, the OS keyring
// or Redis.
package session
