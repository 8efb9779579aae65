// Package session holds the process-wide authentication state of the client.
//
// A Store is created once at start-up, restored from the local database by
// Initialize, and then mutated only by Login, Register, VerifyEmail, Refresh
// and Logout. Every role-gated decision in the client reads from it.
package session
