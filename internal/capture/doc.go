// Package capture owns the microphone and the recording session lifecycle.
// It implements an explicit state machine (Idle, Recording, Stopping,
// Stopped) with a maximum-duration auto-stop, a 1 Hz progress tick, and
// exactly-once release of the underlying device on every exit path.
package capture
