// Package loop drives a simulation in real time.
//
// A Runner ticks its Target at a fixed frame rate, turning the wall-clock time
// between frames into a simulation delta (clamped, then scaled by game speed).
// It stops on game over, on Stop, or when its context ends, and can be paused
// so agents can step the simulation by hand.
package loop
