// Package common contains shared constants and sentinel errors used across
// vidmark components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "bearer"

// MaxPasswordBytes is the bcrypt input limit. Longer passwords are truncated
// to this many UTF-8 bytes before hashing and verification.
const MaxPasswordBytes = 72
