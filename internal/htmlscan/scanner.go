package htmlscan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// AnchorScanner scans HTML text for the href values of fully closed
// <a> elements, yielding only the anchors this partition claims.
//
// The zero value is not usable; construct with NewAnchorScanner. The
// scanner is single-use: to rescan the same text, create a new one.
// Successive calls to Scan advance through the document, and Href
// returns the value claimed by the most recent successful Scan.
//
// Behavior notes, matching what the crawl workers rely on:
//   - Only a closed <a>...</a> pair yields its href. An anchor that is
//     opened but never closed yields nothing.
//   - Attribute order is irrelevant; single and double quotes both work,
//     as do spaces around the = between a name and its value.
//   - If a tag carries several href attributes, the last one parsed wins.
//   - The anchor ordinal advances once per closed <a>, whether or not
//     the tag had an href, so partitioning is stable across documents
//     containing bare anchors.
type AnchorScanner struct {
	text string
	pos  int

	// partition/partitions select which anchor ordinals this scanner claims.
	partition  int
	partitions int
	ordinal    int

	inTag       bool
	inAnchor    bool
	haveTagName bool
	tagName     strings.Builder
	attr        strings.Builder
	attrDone    bool
	value       strings.Builder
	inHref      bool
	inValue     bool
	quote       rune

	pendingHref string
	havePending bool

	href string
}

// NewAnchorScanner creates a scanner over text that claims the anchors
// whose ordinal position modulo partitions equals partition.
//
// partitions must be at least 1; anything less is a caller bug and
// panics rather than silently producing a wrong partitioning.
func NewAnchorScanner(text string, partition, partitions int) *AnchorScanner {
	if partitions < 1 {
		panic("htmlscan: partition count must be at least 1")
	}
	return &AnchorScanner{
		text:       text,
		partition:  partition,
		partitions: partitions,
	}
}

// Scan advances to the next claimed href. It returns false when the
// document is exhausted.
func (s *AnchorScanner) Scan() bool {
	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		s.pos += size

		switch {
		case r == '<' && !s.insideQuotedValue():
			s.startTag()
		case r == '>' && !s.insideQuotedValue():
			if !s.inTag {
				continue
			}
			if s.endTag() {
				return true
			}
		default:
			if !s.inTag {
				continue
			}
			s.scanTagRune(r)
		}
	}
	return false
}

// Href returns the href claimed by the last successful call to Scan.
func (s *AnchorScanner) Href() string {
	return s.href
}

// insideQuotedValue reports whether the scanner is inside a quoted
// attribute value, where '<' and '>' are content, not tag delimiters.
func (s *AnchorScanner) insideQuotedValue() bool {
	return s.inTag && s.inValue && s.quote != 0
}

// startTag resets per-tag state at a '<'.
func (s *AnchorScanner) startTag() {
	s.inTag = true
	s.haveTagName = false
	s.tagName.Reset()
	s.attr.Reset()
	s.attrDone = false
	s.value.Reset()
	s.inHref = false
	s.inValue = false
	s.quote = 0
}

// endTag handles a '>' and reports whether a claimed href was produced.
func (s *AnchorScanner) endTag() bool {
	s.inTag = false
	name := s.tagName.String()

	if name == "a" {
		s.inAnchor = true
		return false
	}

	closing := strings.TrimPrefix(name, "/")
	if closing == name || closing != "a" || !s.inAnchor {
		return false
	}

	// A fully closed anchor. The ordinal advances regardless of whether
	// the tag carried an href.
	s.inAnchor = false
	claimed := s.ordinal%s.partitions == s.partition
	s.ordinal++

	if claimed && s.havePending {
		s.href = s.pendingHref
		s.pendingHref = ""
		s.havePending = false
		return true
	}
	s.pendingHref = ""
	s.havePending = false
	return false
}

// scanTagRune consumes one rune inside a tag, accumulating the tag name
// and, for anchor tags only, attribute names and quoted values.
func (s *AnchorScanner) scanTagRune(r rune) {
	if !s.haveTagName {
		if unicode.IsSpace(r) {
			if s.tagName.Len() > 0 {
				s.haveTagName = true
			}
			return
		}
		s.tagName.WriteRune(r)
		return
	}

	if s.tagName.String() != "a" {
		// Not an anchor: skip the rest of the tag without attribute parsing.
		return
	}

	if !s.inValue {
		switch {
		case unicode.IsSpace(r):
			// Whitespace ends the attribute name but does not discard it:
			// an '=' may still follow the spaces.
			if s.attr.Len() > 0 {
				s.attrDone = true
			}
		case r == '=':
			s.inValue = true
			s.attrDone = false
			s.value.Reset()
			s.quote = 0
			if s.attr.String() == "href" {
				s.inHref = true
			}
		case r != '/':
			// A name character after a completed name starts the next
			// attribute; the previous one turned out to be valueless.
			if s.attrDone {
				s.attr.Reset()
				s.attrDone = false
			}
			s.attr.WriteRune(r)
		}
		return
	}

	if s.quote == 0 {
		if r == '"' || r == '\'' {
			s.quote = r
		}
		return
	}

	if r == s.quote {
		if s.inHref {
			s.pendingHref = s.value.String()
			s.havePending = true
		}
		s.inValue = false
		s.inHref = false
		s.attr.Reset()
		s.attrDone = false
		s.value.Reset()
		s.quote = 0
		return
	}

	s.value.WriteRune(r)
}
