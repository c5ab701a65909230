// Package resample converts audio between sample rates with a
// Kaiser-windowed sinc evaluated in polyphase form.
//
// Sources recorded or imported at a foreign rate are converted once, when
// they enter a project, so the render path only ever reads material at the
// engine rate. The converter compensates the filter delay: output frame n
// lines up with input time n/outRate.
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
