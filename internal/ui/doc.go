// Package ui implements the interactive player using bubbletea's Elm architecture.
//
// The view is a transport panel above the queue:
//  1. now playing: title, artist and artwork locator
//  2. progress: elapsed time, a seekable bar and total time
//  3. controls: previous, play/pause, next, shuffle and repeat
//  4. volume: a draggable bar and its tier; clicking the label toggles mute
//
// [Screen] receives state from the [player.Engine] through its view interfaces. [Model] forwards
// key presses and mouse gestures to the engine, and feeds it media events read from the audio
// element's channel one message at a time.
package ui
