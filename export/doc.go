// Package export turns rendered buffers into files and delivers them.
//
// EncodeWAV and DecodeWAV convert between buffer.Buffer and RIFF/WAVE
// (16, 24 or 32-bit PCM, or 32-bit float). Integer encodings are
// quantized with seeded dither, so encoding the same buffer twice yields
// the same bytes. A Sink stores encoded files: FileSink writes to a
// directory and MinioSink uploads to an S3-compatible bucket.
package export
