// Package tokenstore provides persistent storage abstractions for the
// secret backing upstream authentication: a GCP service-account JSON key
// or a static bearer token.
//
// Supports storage backends with different security and deployment tradeoffs:
//   - File: Local filesystem storage with atomic writes and secure permissions
//   - Env: Read-only environment variable access (requires external secret management)
//   - Keyring: OS-native credential storage
package tokenstore
