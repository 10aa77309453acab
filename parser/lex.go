package parser

import "strconv"

// GetIdent skips leading whitespace then reads a maximal run of
// identifier characters, returning "" (without consuming anything) if
// the current position does not start one (spec.md §4.2).
func (c *Context) GetIdent() string {
	c.SkipSpaces()
	if !isIdentStart(c.cur) {
		return ""
	}
	start := c.pos
	c.Next()
	for !c.Eos() && isIdentCont(c.cur) {
		c.Next()
	}
	return c.src[start:c.pos]
}

// ParseNumber reads a decimal literal — one mandatory leading digit,
// further digits, an optional fractional part, and an optional exponent
// — and converts it to an IEEE-754 double. It fails with
// "invalid number: '<text>'" if the accumulated text does not fully
// convert (spec.md §4.2).
func (c *Context) ParseNumber() float64 {
	start := c.pos

	if !isDigit(c.cur) {
		c.Fail("invalid number: '" + string(c.cur) + "'")
		return 0
	}
	for isDigit(c.cur) {
		c.Next()
	}
	if c.cur == '.' {
		c.Next()
		for isDigit(c.cur) {
			c.Next()
		}
	}
	if c.cur == 'e' || c.cur == 'E' {
		mark := c.SaveMark()
		c.Next()
		if c.cur == '+' || c.cur == '-' {
			c.Next()
		}
		digits := 0
		for isDigit(c.cur) {
			c.Next()
			digits++
		}
		if digits == 0 {
			// No exponent digits: the 'e'/sign were not part of the
			// number after all, so back out of them.
			c.RestoreMark(mark)
		}
	}

	text := c.src[start:c.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		c.Fail("invalid number: '" + text + "'")
		return 0
	}
	return v
}

// hexDigit converts a single ASCII hex digit (either case) to its value,
// reporting ok=false if b is not a hex digit.
func hexDigit(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	default:
		return 0, false
	}
}

// ParseStringLiteral reads a double-quoted string, with \" \\ \f \n \r
// \t and \xHH escapes (spec.md §4.2). The opening quote must already be
// the current byte; it fails with "bad quote" on an unsupported escape,
// "bad hex quote" on a malformed \x escape, and with
// "expected '\"', but got end of input" if the closing quote is missing.
func (c *Context) ParseStringLiteral() string {
	c.Eat('"')
	if c.Failed() {
		return ""
	}

	var out []byte
	for c.cur != '"' {
		if c.Eos() {
			c.Fail("expected '\"', but got end of input")
			return ""
		}
		if c.cur != '\\' {
			out = append(out, c.cur)
			c.Next()
			continue
		}
		c.Next() // consume backslash
		switch c.cur {
		case '"':
			out = append(out, '"')
			c.Next()
		case '\\':
			out = append(out, '\\')
			c.Next()
		case 'f':
			out = append(out, '\f')
			c.Next()
		case 'n':
			out = append(out, '\n')
			c.Next()
		case 'r':
			out = append(out, '\r')
			c.Next()
		case 't':
			out = append(out, '\t')
			c.Next()
		case 'x':
			c.Next()
			hi, ok1 := hexDigit(c.cur)
			if !ok1 {
				c.Fail("bad hex quote")
				return ""
			}
			c.Next()
			lo, ok2 := hexDigit(c.cur)
			if !ok2 {
				c.Fail("bad hex quote")
				return ""
			}
			c.Next()
			out = append(out, byte(hi<<4|lo))
		default:
			c.Fail("bad quote")
			return ""
		}
	}
	c.Next() // consume closing quote
	return string(out)
}
