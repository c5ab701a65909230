// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. [Chain] cascades sections
// and keeps one delay-line state per channel.
//
// Coefficient design lives in dsp/filter/design.
package biquad
