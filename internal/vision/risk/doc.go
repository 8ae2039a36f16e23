// Package risk converts a track's distance, speed and approach angle
// into a weighted collision-risk score and a discrete severity.
//
// The severity decision deliberately mixes absolute threshold rules with
// score fallbacks, evaluated in a fixed precedence order. The rule set is
// load-bearing tuning, not a derived formula; do not "simplify" it.
package risk
