package auth

// Package auth issues and verifies the bearer tokens that guard destructive
// API endpoints.
//
// There are no user accounts: the only credential is an HS256 token signed
// with the service's admin secret, minted offline with `sentimentd token`.
// When no secret is configured the guard is disabled entirely.
