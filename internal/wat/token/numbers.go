package token

import (
	"math"
	"strconv"
	"strings"
)

// classifyNumber attempts to parse run (an idchar run with no internal
// whitespace) as one of: sN (signed integer), uN (unsigned integer), or fN
// (float). ok is false when run is not numeric at all (e.g. it is a
// keyword or identifier), in which case the caller falls back to
// keyword/identifier/reserved classification.
//
// When ok is true but err is non-nil, run looked numeric (started with a
// sign or digit) but was malformed; this is always a fatal Tokenization
// error.
func classifyNumber(run string, ctx Context) (tok Token, ok bool, err error) {
	s := run
	negative := false
	hasSign := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		hasSign = true
		negative = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return Token{}, false, nil
	}

	// inf / nan / nan:0xH
	if s == "inf" {
		f := math.Inf(1)
		if negative {
			f = math.Inf(-1)
		}
		return floatToken(run, ctx, f), true, nil
	}
	if s == "nan" {
		f := math.NaN()
		if negative {
			f = math.Copysign(f, -1)
		}
		return floatToken(run, ctx, f), true, nil
	}
	if strings.HasPrefix(s, "nan:0x") {
		payload := s[len("nan:0x"):]
		digits, derr := stripDigitGroup(payload, isHexDigit)
		if derr != nil || digits == "" {
			return Token{}, true, NewParseError(ctx, Tokenization, "invalid NaN payload in %q", run)
		}
		bits, perr := strconv.ParseUint(digits, 16, 64)
		if perr != nil || bits&0x000fffffffffffff == 0 {
			return Token{}, true, NewParseError(ctx, Tokenization, "invalid NaN payload in %q", run)
		}
		// NaN whose mantissa is exactly the given (non-zero) payload,
		// biased toward float64 width; narrower retyping happens later.
		bitsPattern := uint64(0x7ff0000000000000) | (bits & 0x000fffffffffffff)
		if negative {
			bitsPattern |= 1 << 63
		}
		f := math.Float64frombits(bitsPattern)
		return floatToken(run, ctx, f), true, nil
	}

	if !isDigit(rune(s[0])) {
		// A sign with no digits or recognized magnitude after it (e.g.
		// "-foo") was never a number; let it fall through to Reserved.
		return Token{}, false, nil
	}

	hex := false
	body := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		hex = true
		body = s[2:]
	}

	digitPred := isDigit
	if hex {
		digitPred = isHexDigit
	}

	intPart, rest, derr := stripDigitGroup(body, digitPred)
	if derr != nil {
		return Token{}, true, NewParseError(ctx, Tokenization, "illegal character in numeric literal %q", run)
	}
	if intPart == "" {
		return Token{}, true, NewParseError(ctx, Tokenization, "illegal character in numeric literal %q", run)
	}

	isFloat := false
	fracPart := ""
	expPart := ""
	expSign := ""

	if strings.HasPrefix(rest, ".") {
		isFloat = true
		rest = rest[1:]
		fracPart, rest, derr = stripDigitGroup(rest, digitPred)
		if derr != nil {
			return Token{}, true, NewParseError(ctx, Tokenization, "illegal character in numeric literal %q", run)
		}
	}

	expMarkers := "eE"
	if hex {
		expMarkers = "pP"
	}
	if rest != "" && strings.ContainsRune(expMarkers, rune(rest[0])) {
		isFloat = true
		rest = rest[1:]
		if rest != "" && (rest[0] == '+' || rest[0] == '-') {
			expSign = string(rest[0])
			rest = rest[1:]
		}
		expPart, rest, derr = stripDigitGroup(rest, isDigit)
		if derr != nil || expPart == "" {
			return Token{}, true, NewParseError(ctx, Tokenization, "illegal character in numeric literal %q", run)
		}
	}
	// A hex literal's exponent is mandatory only for hex floats; WASM
	// permits a bare "0x1.8" with no exponent, defaulting to p0.

	if rest != "" {
		// A decimal digit group directly followed by a hex-looking letter
		// (e.g. "12a") is the "unexpected hex digit in a decimal literal"
		// failure mode; any other trailing idchar means this
		// run was never a number to begin with (e.g. "123z", "1.2.3"), so it
		// falls through to Reserved classification instead of a lexer error.
		if !hex && isHexDigit(rune(rest[0])) {
			return Token{}, true, NewParseError(ctx, Tokenization, "unexpected hex digit in decimal literal %q", run)
		}
		return Token{}, false, nil
	}

	if !isFloat {
		if hex {
			mag, perr := strconv.ParseUint(intPart, 16, 64)
			if perr != nil {
				return Token{}, true, NewParseError(ctx, Tokenization, "value out of range: %q", run)
			}
			return intToken(run, ctx, mag, hasSign, negative), true, nil
		}
		mag, perr := strconv.ParseUint(intPart, 10, 64)
		if perr != nil {
			return Token{}, true, NewParseError(ctx, Tokenization, "value out of range: %q", run)
		}
		return intToken(run, ctx, mag, hasSign, negative), true, nil
	}

	var lit string
	if hex {
		lit = "0x" + intPart
		if fracPart != "" || strings.Contains(s, ".") {
			lit += "." + fracPart
		}
		lit += "p" + expSign
		if expPart == "" {
			lit += "0"
		} else {
			lit += expPart
		}
	} else {
		lit = intPart
		if fracPart != "" || strings.Contains(s, ".") {
			lit += "." + fracPart
		}
		if expPart != "" {
			lit += "e" + expSign + expPart
		}
	}
	f, perr := strconv.ParseFloat(lit, 64)
	if perr != nil {
		return Token{}, true, NewParseError(ctx, Tokenization, "illegal float literal %q", run)
	}
	if negative {
		f = -f
	}
	return floatToken(run, ctx, f), true, nil
}

func intToken(run string, ctx Context, magnitude uint64, hasSign, negative bool) Token {
	if !hasSign {
		return Token{Kind: UnsignedInteger, Context: ctx, Sequence: run, Unsigned: magnitude}
	}
	signed := int64(magnitude)
	if negative {
		signed = -signed
	}
	return Token{Kind: SignedInteger, Context: ctx, Sequence: run, Signed: signed}
}

func floatToken(run string, ctx Context, f float64) Token {
	return Token{Kind: Float, Context: ctx, Sequence: run, Float: f}
}

// stripDigitGroup consumes a sequence of "digit (_ digit)*" from s: digit
// groups may contain `_` separators, but an underscore must sit strictly
// between two digits. Returns the digits with underscores removed, the
// unconsumed remainder, and an error if an underscore is mis-placed.
func stripDigitGroup(s string, pred func(rune) bool) (digits, rest string, err error) {
	var b strings.Builder
	i := 0
	lastWasDigit := false
	for i < len(s) {
		c := rune(s[i])
		if pred(c) {
			b.WriteRune(c)
			lastWasDigit = true
			i++
			continue
		}
		if c == '_' {
			if !lastWasDigit || i+1 >= len(s) || !pred(rune(s[i+1])) {
				return "", s, NewParseError(Context{}, Tokenization, "misplaced '_' in numeric literal")
			}
			lastWasDigit = false
			i++
			continue
		}
		break
	}
	return b.String(), s[i:], nil
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isHexDigit(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// ClassifyNumber is the exported entry the lexer calls to attempt numeric
// classification of an idchar run.
func ClassifyNumber(run string, ctx Context) (tok Token, ok bool, err error) {
	return classifyNumber(run, ctx)
}
