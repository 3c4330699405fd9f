// ABOUTME: Sample-rate conversion package for the capture pipeline
// ABOUTME: Provides the pull-driven converter that drains the raw capture ring
// Package convert implements sample-rate conversion between two PCM
// descriptors sharing channel count and bit depth.
//
// The converter is pull-driven: the caller asks for a fixed number of
// output frames and the converter requests however many source frames it
// needs through a callback. The amount consumed varies with the rate
// ratio and the carried interpolation phase, which is why callers drain
// a source buffer only while it holds a comfortable surplus.
//
// Decoded samples travel through go-audio int buffers; supported depths
// are 8-bit unsigned and 16/24/32-bit signed little-endian.
package convert
