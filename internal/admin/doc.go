// Package admin implements the operator CLI: applying migrations, creating
// accounts without going through the HTTP API, and purging expired refresh
// tokens.
//
// Usage:
//
//	vidmark-cli migrate
//	vidmark-cli useradd -email alice@example.com
//	vidmark-cli prune
package admin
