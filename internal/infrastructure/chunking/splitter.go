package chunking

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scholarshield/backend/internal/core/domain"
)

// Handbooks are mostly numbered policy text. Chunks follow section
// boundaries so a retrieved passage cites one rule, not a page-and-a-half
// of unrelated ones.
const (
	handbookLinesPerPage = 50
	maxSectionChunkChars = 500
)

var (
	sectionHeadPattern = regexp.MustCompile(`^\s*(?:(?:SECTION|BYLAW|CHAPTER)\b|\d+\.\d+\b)`)
	sectionNumPattern  = regexp.MustCompile(`\d+(?:\.\d+)*`)
)

type SectionSplitter struct {
	FlatChunkSize int
	FlatOverlap   int
}

func NewSectionSplitter(flatChunkSize, flatOverlap int) *SectionSplitter {
	if flatChunkSize <= 0 {
		flatChunkSize = 1000
	}
	if flatOverlap < 0 {
		flatOverlap = 0
	}
	if flatOverlap >= flatChunkSize {
		flatOverlap = flatChunkSize / 4
	}
	return &SectionSplitter{
		FlatChunkSize: flatChunkSize,
		FlatOverlap:   flatOverlap,
	}
}

func (s *SectionSplitter) Split(text string) []domain.HandbookChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	var blocks []sectionBlock
	current := sectionBlock{startLine: 0}
	sawHeader := false

	for i, line := range lines {
		if sectionHeadPattern.MatchString(line) {
			sawHeader = true
			if current.hasContent() {
				blocks = append(blocks, current)
			}
			current = sectionBlock{startLine: i, section: sectionLabel(line)}
		}
		current.lines = append(current.lines, line)
	}
	if current.hasContent() {
		blocks = append(blocks, current)
	}

	if !sawHeader {
		return s.flatChunks(text)
	}

	var out []domain.HandbookChunk
	for _, b := range blocks {
		out = append(out, splitOversizeBlock(b)...)
	}
	return out
}

type sectionBlock struct {
	lines     []string
	startLine int
	section   string
}

func (b sectionBlock) hasContent() bool {
	for _, line := range b.lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

func sectionLabel(headerLine string) string {
	return sectionNumPattern.FindString(headerLine)
}

func pageForLine(line int) string {
	return strconv.Itoa(line/handbookLinesPerPage + 1)
}

// splitOversizeBlock keeps a section as one chunk unless it overruns the
// size cap, in which case it splits on blank lines, greedily packing
// paragraphs back together up to the cap.
func splitOversizeBlock(b sectionBlock) []domain.HandbookChunk {
	content := strings.TrimSpace(strings.Join(b.lines, "\n"))
	if content == "" {
		return nil
	}
	if len(content) <= maxSectionChunkChars {
		return []domain.HandbookChunk{{
			Content: content,
			Section: b.section,
			Page:    pageForLine(b.startLine),
		}}
	}

	type paragraph struct {
		text      string
		startLine int
	}
	var paras []paragraph
	var buf []string
	bufStart := 0
	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			paras = append(paras, paragraph{text: text, startLine: b.startLine + bufStart})
		}
		buf = nil
	}
	for i, line := range b.lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(buf) == 0 {
			bufStart = i
		}
		buf = append(buf, line)
	}
	flush()

	var out []domain.HandbookChunk
	var pending paragraph
	for _, p := range paras {
		if pending.text == "" {
			pending = p
			continue
		}
		if len(pending.text)+len(p.text)+2 <= maxSectionChunkChars {
			pending.text = pending.text + "\n\n" + p.text
			continue
		}
		out = append(out, domain.HandbookChunk{Content: pending.text, Section: b.section, Page: pageForLine(pending.startLine)})
		pending = p
	}
	if pending.text != "" {
		out = append(out, domain.HandbookChunk{Content: pending.text, Section: b.section, Page: pageForLine(pending.startLine)})
	}
	return out
}

// flatChunks is the fallback for text with no recognizable structure:
// fixed-size rune windows with optional overlap.
func (s *SectionSplitter) flatChunks(text string) []domain.HandbookChunk {
	runes := []rune(text)
	step := s.FlatChunkSize - s.FlatOverlap
	if step <= 0 {
		step = s.FlatChunkSize
	}

	out := make([]domain.HandbookChunk, 0, len(runes)/step+1)
	linesBefore := 0
	prevStart := 0
	for start := 0; start < len(runes); start += step {
		for i := prevStart; i < start; i++ {
			if runes[i] == '\n' {
				linesBefore++
			}
		}
		prevStart = start

		end := start + s.FlatChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, domain.HandbookChunk{
				Content: chunk,
				Page:    pageForLine(linesBefore),
			})
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
