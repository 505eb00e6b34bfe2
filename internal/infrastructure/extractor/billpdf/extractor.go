package billpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/scholarshield/backend/internal/core/domain"
)

var (
	amountPattern      = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{2})?)`)
	dueDateISOPattern  = regexp.MustCompile(`(?i)due[^\n]*?(\d{4}-\d{2}-\d{2})`)
	dueDateLongPattern = regexp.MustCompile(`(?i)due[^\n]*?([a-zA-Z]+ \d{1,2}, \d{4})`)
	vendorPattern      = regexp.MustCompile(`([A-Z][A-Za-z .&'-]*University)`)
	invoicePattern     = regexp.MustCompile(`(INV-\d{4}-\d+)`)
)

// Extractor pulls billing fields out of an uploaded tuition bill. PDFs are
// parsed with ledongthuc/pdf, anything else is treated as plain text.
// Fields it cannot find stay unset; downstream classification fails open.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractBill(ctx context.Context, payload []byte) (domain.BillRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.BillRecord{}, err
	}
	if len(payload) == 0 {
		return domain.BillRecord{}, domain.WrapError(domain.ErrExtractionFailed, "extract bill", errors.New("empty payload"))
	}

	var text string
	if bytes.HasPrefix(payload, []byte("%PDF")) {
		extracted, err := pdfPlainText(payload)
		if err != nil {
			return domain.BillRecord{}, domain.WrapError(domain.ErrExtractionFailed, "parse bill pdf", err)
		}
		text = extracted
	} else {
		if !utf8.Valid(payload) {
			return domain.BillRecord{}, domain.WrapError(domain.ErrExtractionFailed, "extract bill", errors.New("payload is neither pdf nor utf-8 text"))
		}
		text = string(payload)
	}

	return parseBillText(text), nil
}

func parseBillText(text string) domain.BillRecord {
	record := domain.BillRecord{
		DueDate:    findDueDate(text),
		VendorName: firstMatch(vendorPattern, text),
		InvoiceID:  firstMatch(invoicePattern, text),
	}
	if amount, ok := largestAmount(text); ok {
		record.TotalAmount = &amount
	}
	return record
}

// largestAmount picks the biggest dollar figure on the bill, which on a
// tuition statement is the total rather than a line item.
func largestAmount(text string) (float64, bool) {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var best float64
	found := false
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if !found || value > best {
			best = value
			found = true
		}
	}
	return best, found
}

func findDueDate(text string) string {
	if m := dueDateISOPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := dueDateLongPattern.FindStringSubmatch(text); m != nil {
		if parsed, err := time.Parse("January 2, 2006", m[1]); err == nil {
			return parsed.Format(domain.DueDateLayout)
		}
	}
	return ""
}

func firstMatch(pattern *regexp.Regexp, text string) string {
	if m := pattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func pdfPlainText(payload []byte) (_ string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return builder.String(), nil
}
