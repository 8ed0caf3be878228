// Package registry implements the auth core of a club registry backend:
// organizations register with a pre-approved email, confirm it through a
// signed time-limited link, and authenticate with JWT access/refresh pairs
// whose token ids are tracked in a revocation ledger.
//
// Token revocation:
//   - Every issued token carries a random JTI that the login and refresh
//     flows persist into the TokenLedger. Revocation flips an expired flag,
//     never deletes, so the blacklist query stays a simple lookup. An id the
//     ledger has never seen is reported as valid; see TokenLedger for the
//     reasoning behind that fail-open default.
//
// Confirmation tokens:
//   - EmailVerifier tokens are signed capabilities, not stored records. The
//     issuance timestamp travels inside the token and the verification
//     window is enforced at decode time.
//
// Collaborators:
//   - HTTP routing, JSON schema validation, and SMTP delivery live outside
//     this module. They interact with the core through the typed request
//     structs, the Mailer interface, and the SessionClaims returned by the
//     token service.
package registry
