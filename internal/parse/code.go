package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	codeRe  = regexp.MustCompile(`^([A-Z]{1,6})[-_ ]?(\d{1,6})$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// ParsedCode holds the structured parts of an item code such as "SR-0012".
type ParsedCode struct {
	Prefix string
	Seq    int
	// Canonical is the normalized form stored in items.code.
	Canonical string
}

// ParseItemCode normalizes a raw item code typed on a form.
// Accepted shapes are a letter prefix followed by a number, with an optional
// separator: "sr12", "SR 12", "SR_0012" all become "SR-0012".
func ParseItemCode(raw string) (ParsedCode, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = spaceRe.ReplaceAllString(s, " ")
	if s == "" {
		return ParsedCode{}, fmt.Errorf("empty item code")
	}

	m := codeRe.FindStringSubmatch(s)
	if m == nil {
		return ParsedCode{}, fmt.Errorf("unable to parse item code: %q", raw)
	}

	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedCode{}, fmt.Errorf("unable to parse sequence of item code %q: %w", raw, err)
	}
	if seq == 0 {
		return ParsedCode{}, fmt.Errorf("item code %q has a zero sequence", raw)
	}

	// keep at least four digits, more if the operator typed them
	width := len(m[2])
	if width < 4 {
		width = 4
	}
	return ParsedCode{
		Prefix:    m[1],
		Seq:       seq,
		Canonical: fmt.Sprintf("%s-%0*d", m[1], width, seq),
	}, nil
}
