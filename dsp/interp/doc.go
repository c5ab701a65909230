// Package interp provides the interpolation primitives used when clips are
// resampled or played at a non-unity rate and by modulated delay reads.
//
// [Hermite4] is the default 4-point cubic; [HermiteAt] applies it to a
// slice with zero padding at both ends.
package interp
