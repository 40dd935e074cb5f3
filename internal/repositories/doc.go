// Package repositories implements SQLite persistence for tapedeck.
//
// The only durable state is a small key/value table. [PreferenceRepository] reads and writes it
// and is what the player engine uses to persist shuffle, repeat and last volume between runs.
// Queue and cursor are session state and never reach the database.
package repositories
