// Package ffmpeg spawns the bundled encoder and classifies its exit status.
//
// Runner executes one invocation at a time and never kills a running child:
// callers decide between invocations whether to continue. Encoder output is
// discarded unless a mirror writer is configured, in which case it is copied
// through verbatim.
package ffmpeg
