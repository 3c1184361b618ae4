package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// TagKind distinguishes the two precise version forms.
type TagKind uint8

const (
	// Semantic tags are major.minor.patch.edition.
	Semantic TagKind = iota
	// Toolchain tags are date stamped: YYYY-MM-DD with an optional
	// single-letter build suffix.
	Toolchain
)

// Tag is a precise version label attached to a release.
//
// For Semantic tags Parts holds major, minor, patch and edition. For
// Toolchain tags Parts holds year, month and day, and Letter the optional
// suffix.
type Tag struct {
	Kind   TagKind
	Parts  [4]int
	Letter string
}

// ParseTag parses a precise tag. Missing trailing semantic components are
// zero, so "1.2" is 1.2.0.0. Toolchain tags need a full date.
func ParseTag(s string) (Tag, error) {
	if strings.Contains(s, "-") {
		m, err := ParseMask(s)
		if err != nil {
			return Tag{}, err
		}
		if m.n < 3 {
			return Tag{}, fmt.Errorf("%w: toolchain tag %q needs a full date", ErrInvalidTag, s)
		}
		return Tag{Kind: Toolchain, Parts: m.parts, Letter: m.letter}, nil
	}
	m, err := ParseMask(s)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Kind: Semantic, Parts: m.parts}, nil
}

// MustParseTag is ParseTag for literals in tests and fixtures.
func MustParseTag(s string) Tag {
	t, err := ParseTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Tag) String() string {
	if t.Kind == Toolchain {
		s := fmt.Sprintf("%04d-%02d-%02d", t.Parts[0], t.Parts[1], t.Parts[2])
		if t.Letter != "" {
			s += "-" + t.Letter
		}
		return s
	}
	s := fmt.Sprintf("%d.%d.%d", t.Parts[0], t.Parts[1], t.Parts[2])
	if t.Parts[3] != 0 {
		s += "." + strconv.Itoa(t.Parts[3])
	}
	return s
}

// CompareTags orders semantic tags before toolchain tags, then
// component-wise, then by letter.
func CompareTags(a, b Tag) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	for i := range a.Parts {
		switch {
		case a.Parts[i] < b.Parts[i]:
			return -1
		case a.Parts[i] > b.Parts[i]:
			return 1
		}
	}
	return strings.Compare(a.Letter, b.Letter)
}

// Mask is a partial version pattern such as "1", "1.2", "2021-09" or a
// complete tag.
type Mask struct {
	toolchain bool
	parts     [4]int
	n         int
	letter    string
}

// ParseMask parses a masked version pattern.
func ParseMask(s string) (Mask, error) {
	if s == "" {
		return Mask{}, fmt.Errorf("%w: empty version", ErrInvalidTag)
	}
	var (
		m      Mask
		fields []string
	)
	if strings.Contains(s, "-") {
		m.toolchain = true
		fields = strings.Split(s, "-")
		if len(fields) == 4 {
			m.letter = fields[3]
			if len(m.letter) != 1 || m.letter[0] < 'a' || m.letter[0] > 'z' {
				return Mask{}, fmt.Errorf("%w: bad build suffix in %q", ErrInvalidTag, s)
			}
			fields = fields[:3]
		}
		if len(fields) > 3 {
			return Mask{}, fmt.Errorf("%w: too many date components in %q", ErrInvalidTag, s)
		}
	} else {
		fields = strings.Split(s, ".")
		if len(fields) > 4 {
			return Mask{}, fmt.Errorf("%w: too many components in %q", ErrInvalidTag, s)
		}
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || f[0] == '+' {
			return Mask{}, fmt.Errorf("%w: component %q in %q", ErrInvalidTag, f, s)
		}
		m.parts[i] = n
	}
	m.n = len(fields)
	if m.toolchain && m.n >= 2 && (m.parts[1] < 1 || m.parts[1] > 12) {
		return Mask{}, fmt.Errorf("%w: month out of range in %q", ErrInvalidTag, s)
	}
	if m.toolchain && m.n >= 3 && (m.parts[2] < 1 || m.parts[2] > 31) {
		return Mask{}, fmt.Errorf("%w: day out of range in %q", ErrInvalidTag, s)
	}
	return m, nil
}

// Matches reports whether tag agrees with every component the mask
// specifies. A bare number matches the major version of a semantic tag or
// the year of a toolchain tag.
func (m Mask) Matches(t Tag) bool {
	switch {
	case m.toolchain && t.Kind != Toolchain:
		return false
	case !m.toolchain && m.n > 1 && t.Kind != Semantic:
		return false
	}
	for i := 0; i < m.n; i++ {
		if m.parts[i] != t.Parts[i] {
			return false
		}
	}
	return m.letter == "" || m.letter == t.Letter
}

// Precise reports whether the mask names a single tag exactly, so a
// request using it needs no redirect.
func (m Mask) Precise(t Tag) bool {
	if !m.Matches(t) {
		return false
	}
	if t.Kind == Toolchain {
		return m.n == 3 && m.letter == t.Letter
	}
	return m.String() == t.String()
}

func (m Mask) String() string {
	parts := make([]string, m.n)
	for i := 0; i < m.n; i++ {
		if m.toolchain && i > 0 {
			parts[i] = fmt.Sprintf("%02d", m.parts[i])
		} else if m.toolchain {
			parts[i] = fmt.Sprintf("%04d", m.parts[i])
		} else {
			parts[i] = strconv.Itoa(m.parts[i])
		}
	}
	if m.toolchain {
		s := strings.Join(parts, "-")
		if m.letter != "" {
			s += "-" + m.letter
		}
		return s
	}
	return strings.Join(parts, ".")
}
