// Package plate generates and checks plate numbers of the form NNNN/YY/L:
// a zero-padded sequence in [0, 9999], the last two digits of the year and
// one uppercase letter.
package plate

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"
)

const (
	maxSequence = 9999
	letters     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var pattern = regexp.MustCompile(`^\d{4}/\d{2}/[A-Z]$`)

// Valid reports whether s has the NNNN/YY/L shape.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Format assembles a plate number. year may be a full year; only its last
// two digits are used.
func Format(seq int, year int, letter byte) string {
	return fmt.Sprintf("%04d/%02d/%c", seq, year%100, letter)
}

// Generator produces pseudo-random plate numbers. It does not know which
// numbers are taken, so repeats are possible. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewGenerator builds a Generator. A nil src uses the runtime's random
// source; a nil now uses time.Now.
func NewGenerator(src rand.Source, now func() time.Time) *Generator {
	g := &Generator{now: now}
	if src != nil {
		g.rnd = rand.New(src)
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Generate returns a fresh plate number for the current year.
func (g *Generator) Generate() string {
	seq, l := g.draw()
	return Format(seq, g.now().Year(), letters[l])
}

func (g *Generator) draw() (int, int) {
	if g.rnd == nil {
		return rand.IntN(maxSequence + 1), rand.IntN(len(letters))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(maxSequence + 1), g.rnd.IntN(len(letters))
}
