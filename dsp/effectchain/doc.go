// Package effectchain hosts ordered per-track effect chains.
//
// A [Slot] is the data half of an effect: its kind, enabled flag, dry/wet
// mix and parameter values, validated against the [Schema] declared by the
// kind's [Definition]. A [Chain] is the runtime half: it owns one [Effect]
// per slot, reconciles them by slot ID when the slot list changes, and
// processes stereo blocks strictly in declared order.
//
// Disabled slots are skipped entirely, so bypassing an effect is
// bit-identical to removing it.
package effectchain
