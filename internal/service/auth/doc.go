// Package auth issues and validates HMAC-signed JWT access tokens and
// compares bcrypt password hashes.
package auth
