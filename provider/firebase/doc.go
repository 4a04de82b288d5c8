// Package firebase verifies Firebase-issued identity tokens for the
// identity module.
//
// Use this package to derive an identity.Principal from a provider token
// while keeping session issuing and synchronization behavior in the root
// package.
package firebase
