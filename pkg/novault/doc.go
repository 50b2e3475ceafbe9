/*
Package novault derives site passwords from a single memorized master secret without storing any password ("vaultless").

# How it works:

A master secret, an optional locally stored pepper, and a per-site salt are passed to Argon2d (see the kdf package) with the cost parameters from Settings.
The master secret is used as the Argon2 secret key input and the pepper as the password input, so an attacker needs both to reproduce anything.
The resulting 128 bytes are encoded as base64url (or as a 19 digit PIN), and then rendered through the site's format template.

A format template is literal text with a single substitution field for the hash: "{p}" for the whole hash, or "{p:.N}" for its first N characters.
Literal braces are written as "{{" and "}}".
A rendered password must be at least 4 characters long and contain the first 4 characters of the hash, otherwise the template is rejected.

The only secret-derived value that is ever persisted is the CheckHash: a 16 character rendering of a reserved site, used to confirm that the master secret typed is the one used at Init.
The reserved site name (CheckName) can't be used for a real site.

# General guidelines:
  - Settings can't be changed after Init. Level, memory, threads, pepper, and install identity are inputs to every derivation, so "changing" them means creating a new set of passwords.
  - A site's salt is derived from its name and revision. Bump the revision to rotate a site's password while keeping its name.
  - MasterSecret and SitePassword redact themselves when formatted, and have no serialization methods. Call Destroy when done with them.
  - Errors never include the master secret, the pepper, a site password, or a computed CheckHash.
*/
package novault
