// Package identity provides the authentication and identity-synchronization
// core for the Pairloom backend: self-signed session tokens, provider-token
// verification, and the persistent identity record they reconcile into.
//
// Session tokens:
//   - TokenService issues and validates HS256 JWTs carrying the subject,
//     email, and an ordered roles claim. Issuer and audience are enforced on
//     every validation, and expired tokens are reported distinctly from
//     malformed ones so callers can log them apart while the HTTP boundary
//     collapses both into a single unauthorized outcome.
//
// Provider identities:
//   - provider/firebase verifies opaque id tokens through a TokenClient
//     collaborator and produces a request-scoped Principal. Verification is
//     delegated, never reimplemented; the package's job is strict
//     error-to-outcome mapping.
//
// Synchronization:
//   - Identities persists one row per provider subject with a single-statement
//     upsert, so two concurrent first-writers for the same subject cannot race
//     each other into duplicate rows. Synchronizer bridges a verified
//     Principal into that upsert.
//
// Validation:
//   - Request payloads are gated by ordered rule chains that collect every
//     applicable error code instead of stopping at the first failure.
package identity
