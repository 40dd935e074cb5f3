// Package models defines the track record handed to the player by producers.
//
// [Track] mirrors the JSON shape served by the music catalogue API (snake_case keys).
// Only the audio locator is required; every other field degrades to a placeholder when absent.
package models
