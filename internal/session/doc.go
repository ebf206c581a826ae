// Package session persists the signed-in identity between command
// invocations as a JSON file under the user configuration directory.
package session
