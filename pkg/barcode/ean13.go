// Package barcode encodes EAN-13 symbols into module patterns, independent of any
// drawing backend.
package barcode

import (
	"errors"
	"strings"
)

// ErrInvalidPayload is reported by Parse when the payload is not 12 digits, or 13
// digits ending in the wrong check digit.
var ErrInvalidPayload = errors.New("invalid EAN-13 payload")

// Modules is the width of an EAN-13 symbol without quiet zones.
const Modules = 95

var (
	// Odd-parity left-hand codes. Even-parity left codes are their reversed
	// complement and right-hand codes their complement.
	lCodes = [10]string{
		"0001101", "0011001", "0010011", "0111101", "0100011",
		"0110001", "0101111", "0111011", "0110111", "0001011",
	}

	// Parity of the six left digits selected by the leading digit; 'L' odd, 'G' even.
	firstDigitParity = [10]string{
		"LLLLLL", "LLGLGG", "LLGGLG", "LLGGGL", "LGLLGG",
		"LGGLLG", "LGGGLL", "LGLGLG", "LGLGGL", "LGGLGL",
	}
)

const (
	guard       = "101"
	centreGuard = "01010"
)

// Symbol is an encoded EAN-13 barcode.
type Symbol struct {
	// Digits is the 13-digit human-readable text, check digit last.
	Digits string
	// Bars holds one entry per module, true for a dark bar.
	Bars []bool
}

// CheckDigit computes the EAN-13 check digit of a 12-digit payload: odd positions
// (1-based, from the left) weigh 1, even positions weigh 3.
func CheckDigit(payload string) (int, error) {
	if !isDigits(payload, 12) {
		return 0, ErrInvalidPayload
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(payload[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10, nil
}

// Parse validates and encodes payload. Surrounding whitespace is ignored. A
// 13-digit value is accepted only when its last digit is the correct check digit.
func Parse(payload string) (Symbol, error) {
	p := strings.TrimSpace(payload)
	var given string
	if isDigits(p, 13) {
		p, given = p[:12], p[12:]
	}
	check, err := CheckDigit(p)
	if err != nil {
		return Symbol{}, err
	}
	if given != "" && int(given[0]-'0') != check {
		return Symbol{}, ErrInvalidPayload
	}

	digits := p + string(rune('0'+check))
	var b strings.Builder
	b.Grow(Modules)
	b.WriteString(guard)

	parity := firstDigitParity[digits[0]-'0']
	for i := 1; i <= 6; i++ {
		code := lCodes[digits[i]-'0']
		if parity[i-1] == 'G' {
			code = reverse(complement(code))
		}
		b.WriteString(code)
	}
	b.WriteString(centreGuard)
	for i := 7; i <= 12; i++ {
		b.WriteString(complement(lCodes[digits[i]-'0']))
	}
	b.WriteString(guard)

	return Symbol{Digits: digits, Bars: toBools(b.String())}, nil
}

// Encode is Parse for callers that only need to know whether a barcode can be drawn.
// Invalid input yields ok=false; it is never an error worth surfacing.
func Encode(payload string) (Symbol, bool) {
	s, err := Parse(payload)
	return s, err == nil
}

// String renders the module pattern as 1s and 0s.
func (s Symbol) String() string {
	var b strings.Builder
	for _, dark := range s.Bars {
		if dark {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Runs collapses the pattern into dark runs, each as start module and width.
// Drawing backends fill one rectangle per run.
func (s Symbol) Runs() [][2]int {
	var runs [][2]int
	for i := 0; i < len(s.Bars); {
		if !s.Bars[i] {
			i++
			continue
		}
		start := i
		for i < len(s.Bars) && s.Bars[i] {
			i++
		}
		runs = append(runs, [2]int{start, i - start})
	}
	return runs
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func complement(code string) string {
	out := []byte(code)
	for i, c := range out {
		if c == '0' {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

func reverse(code string) string {
	out := []byte(code)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func toBools(pattern string) []bool {
	bars := make([]bool, len(pattern))
	for i := range pattern {
		bars[i] = pattern[i] == '1'
	}
	return bars
}
