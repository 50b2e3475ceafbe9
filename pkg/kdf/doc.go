/*
Package kdf provides the memory-hard Argon2 key derivation function (versions 0x10 and 0x13, RFC 9106) with all of its inputs exposed.

The Argon2 implementation in golang.org/x/crypto/argon2 only exposes the password and salt inputs, and only the Argon2i and Argon2id variants.
This package additionally accepts the optional secret value (K) and associated data (X) inputs, supports the data-dependent Argon2d variant,
and can produce the pre-standard version 0x10 output that older tools derived their keys with.
For inputs without a secret or associated data, Key produces the same output as golang.org/x/crypto/argon2.

# How it works:

Params are hashed together with every input into a 64 byte seed using BLAKE2b.
The seed fills the first two blocks of every lane, after which each block is computed from its predecessor and a pseudo-randomly chosen reference block.
Memory is split into Threads lanes, and each lane into 4 segments; segments at the same position are filled concurrently.
After Time passes over the memory, the last block of each lane is combined and hashed down to the requested key length.

# General guidelines:
  - Argon2d uses data-dependent memory access, which makes it the most resistant to GPU cracking, but leaks timing information. Only use it where side channels are not part of the threat model.
  - MemoryKiB must be at least 8 times Threads. It is rounded down to a multiple of 4*Threads.
  - Version 0x10 differs from 0x13 only in the seed and in how passes after the first update memory. Prefer 0x13 unless existing keys must be reproduced.
  - Changing any parameter or input changes the output, so Params must be stored alongside anything derived from them.
*/
package kdf
