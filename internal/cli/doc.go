// Package cli defines the cobra command tree of the voicenote tool.
package cli
