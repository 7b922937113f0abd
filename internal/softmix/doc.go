// Package softmix is a software implementation of backend.Backend.
//
// An Engine owns decoded sounds, channel groups and voices, and renders
// them into interleaved stereo float32 frames on demand. The DSP clock is
// the number of frames rendered so far, so fade points and stop deadlines
// are sample accurate regardless of how often the caller ticks. Sounds are
// decoded on bounded loader workers and become ready on the next Update.
//
// Audio leaves the engine through an Output: OpenOto plays it on the
// default device, NewNullOutput consumes it in real time without one.
// Streams are decoded in full like sounds; only their channel semantics
// differ.
package softmix
