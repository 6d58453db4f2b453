// lot.go — Lot code validation, upgrade and generation.
package fields

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

var (
	canonicalLot = regexp.MustCompile(`^[A-Z]{2}\d{5}$`)
	legacyLot    = regexp.MustCompile(`^([A-Z]{2})(\d{4})$`)
	weekDayLot   = regexp.MustCompile(`^(\d{1,2})\s*[/\-. ]\s*(\d{1,2})$`)
	shortCode    = regexp.MustCompile(`^\d{1,4}$`)
)

// Rand is the randomness used to generate lot codes. *rand.Rand satisfies it;
// tests inject a seeded source so generation is deterministic.
type Rand interface {
	Intn(n int) int
}

// LockedRand makes a Rand safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	src Rand
}

// NewLockedRand wraps src. A nil src is seeded from the clock.
func NewLockedRand(src Rand) *LockedRand {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &LockedRand{src: src}
}

// Intn implements Rand.
func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

// IsCanonicalLot reports whether s is two uppercase letters followed by five digits.
func IsCanonicalLot(s string) bool {
	return canonicalLot.MatchString(s)
}

// Lot returns the canonical lot for raw. Canonical values pass through, legacy
// two-letter + four-digit values are zero-padded, anything else is replaced by a
// generated code seeded with the first two letters of seed (the order file name).
func Lot(raw, seed string, rnd Rand) string {
	if lot, ok := ParseLot(raw); ok {
		return lot
	}
	return GenerateLot(seed, rnd)
}

// ParseLot returns the canonical form of raw when it is canonical or legacy.
func ParseLot(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if canonicalLot.MatchString(s) {
		return s, true
	}
	if m := legacyLot.FindStringSubmatch(s); m != nil {
		return m[1] + "0" + m[2], true
	}
	return "", false
}

// GenerateLot builds a fresh lot: two letters from seed when it has at least two
// letters, else two random letters, followed by five random digits.
func GenerateLot(seed string, rnd Rand) string {
	prefix := seedLetters(seed)
	if prefix == "" {
		prefix = string([]byte{
			byte('A' + rnd.Intn(26)),
			byte('A' + rnd.Intn(26)),
		})
	}
	return fmt.Sprintf("%s%05d", prefix, rnd.Intn(100000))
}

func seedLetters(seed string) string {
	var letters []rune
	for _, r := range seed {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 2 {
				return string(letters)
			}
		}
	}
	return ""
}

// WeekDayLot returns the WW/DD lot form, falling back to the generic canonical lot.
func WeekDayLot(raw, packDate, seed string, rnd Rand) string {
	if lot, ok := ParseWeekDayLot(raw, packDate); ok {
		return lot
	}
	return Lot(raw, seed, rnd)
}

// ParseWeekDayLot derives WW/DD from the ISO week and day of month of the packing
// date when it parses, else from a slash-normalized w/d value, else from a code of
// up to four digits read as WWDD.
func ParseWeekDayLot(raw, packDate string) (string, bool) {
	if t, ok := ParseDate(packDate); ok {
		_, week := t.ISOWeek()
		return fmt.Sprintf("%02d/%02d", week, t.Day()), true
	}

	s := strings.TrimSpace(raw)
	if m := weekDayLot.FindStringSubmatch(s); m != nil {
		w, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d/%02d", w, d), true
	}
	if shortCode.MatchString(s) {
		n, _ := strconv.Atoi(s)
		padded := fmt.Sprintf("%04d", n)
		return padded[:2] + "/" + padded[2:], true
	}
	return "", false
}
