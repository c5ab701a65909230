// Package design provides RBJ-style biquad coefficient designers for the
// equalizer: shelves, peaks and Butterworth high/low-pass cascades.
//
// Designers return biquad.Identity for a gain of exactly 0 dB or for
// frequencies outside (0, Nyquist), so a flat equalizer is bit exact.
package design
