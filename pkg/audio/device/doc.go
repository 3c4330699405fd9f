// ABOUTME: Hardware backend package for the stream engine
// ABOUTME: Provides the Backend interface and malgo, oto and PortAudio implementations
// Package device defines the boundary to the host audio subsystem.
//
// A Backend opens render and capture devices against one hardware engine.
// Devices run a pull model: the hardware periodically invokes the
// registered callback on its own real-time thread, either asking to be
// fed (render) or announcing newly arrived frames (capture). Callbacks
// must complete in bounded time and never block.
//
// Capture hands the stream a deliver function instead of a buffer so the
// stream can choose the destination: directly inside its ring when the
// span is contiguous, or a scratch buffer when it wraps.
//
// Backends:
//   - Malgo (miniaudio): full duplex, the default
//   - Oto: render only
//   - PortAudio: behind the "portaudio" build tag
package device
