/*
Package session caches a validated master secret for an interactive session, so it only has to be typed once.

Each retrieval is gated by a short session password instead.
The master secret is never stored in the clear: it's XOR screened with a random key generated for the session, and the session password is kept only as a keyed BLAKE2b digest.
Three consecutive wrong session passwords (by default) clear the cache and end the process.

Nothing in this package is ever written to disk.
*/
package session
