// Package decode turns audio files into fully decoded clips of interleaved
// float32 samples. WAV and AIFF are read through go-audio, MP3 through
// go-mp3 and Ogg Vorbis through oggvorbis. Clips can be converted to stereo
// and resampled to the mixer rate before playback.
package decode
