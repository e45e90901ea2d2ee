// Package qkd simulates quantum key distribution: the entanglement-based
// E91 protocol with real-time eavesdropper detection, the
// polarization-basis BB84 protocol as a contrast baseline, and the CHSH
// Bell test certifying that the source exhibits genuinely quantum
// correlation.
package qkd

// Security policy constants. These are the auditable thresholds of the
// system; logic never inlines them.
const (
	// QBERSecureBound is the quantum bit error rate at or above which a
	// key negotiation is considered compromised. 11% is the established
	// security bound for the BB84/E91 protocol family.
	QBERSecureBound = 0.11

	// BaselineNoise is the intrinsic matched-basis disagreement rate of
	// the modeled channel absent any attacker.
	BaselineNoise = 0.02

	// InterceptResendError is the matched-basis disagreement rate
	// induced by an intercept-resend attack: the attacker guesses the
	// wrong basis half the time, and a wrong-basis measurement
	// randomizes the forwarded state.
	InterceptResendError = 0.25
)
