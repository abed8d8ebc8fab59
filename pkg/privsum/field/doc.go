// Package field implements modular integer arithmetic over a validated odd
// prime, the value domain for every secret-shared quantity in privsum.
//
// A Modulus is constructed once per session and is immutable afterwards.
// Reduction uses true mathematical modulo, so arbitrary signed inputs
// (including negative partial sums) always land in [0, p). The package also
// owns the fixed-width element encoding consumed by the wire layer, keeping
// "what a field element looks like in bytes" in one place.
package field
