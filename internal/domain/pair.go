// Package domain defines core data structures shared across the desk.
package domain

import "fmt"

// Pair cryptocurrency trading pair.
type Pair struct {
	// From base asset symbol.
	From string
	// To quote asset symbol.
	To string
}

// String returns the string representation.
func (p *Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated exchange symbol representation.
func (p *Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}
