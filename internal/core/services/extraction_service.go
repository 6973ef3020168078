package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// Extraction confidence levels. Anchored values come from a line carrying a
// keyword anchor; fallback values were picked without one.
const (
	confAnchored = 0.9
	confTax      = 0.85
	confVendor   = 0.8
	confDocNo    = 0.7
	confCurrency = 0.6
	confFallback = 0.5
)

// Date patterns commonly printed on Turkish receipts.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2})[./](\d{1,2})[./](20\d{2})`),           // DD.MM.YYYY or DD/MM/YYYY
	regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(20\d{2})`),                 // DD-MM-YYYY
	regexp.MustCompile(`(20\d{2})[./](\d{1,2})[./](\d{1,2})`),           // YYYY.MM.DD
	regexp.MustCompile(`(?i)(\d{1,2})\s+(Ocak|Şubat|Mart|Nisan|Mayıs|Haziran|Temmuz|Ağustos|Eylül|Ekim|Kasım|Aralık)\s+(20\d{2})`), // DD MONTH YYYY
}

var turkishMonths = map[string]time.Month{
	"ocak": time.January, "şubat": time.February, "mart": time.March,
	"nisan": time.April, "mayıs": time.May, "haziran": time.June,
	"temmuz": time.July, "ağustos": time.August, "eylül": time.September,
	"ekim": time.October, "kasım": time.November, "aralık": time.December,
}

// Amount token patterns: Turkish thousands-dot/decimal-comma first (with the
// asterisk prefix thermal printers use), then plain dot-decimal.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\*\s*(\d{1,3}(?:\.\d{3})*(?:,\d{2}))`),
	regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*(?:,\d{2}))\s*(?:TL|TRY|₺)`),
	regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*,\d{2})`),
	regexp.MustCompile(`(\d+\.\d{2})\b`),
}

var totalKeywords = []string{
	"toplam", "genel toplam", "ödenecek tutar", "tutar",
	"net tutar", "brüt tutar", "total", "grand total",
	"yekun", "ödenen", "nakit", "kredi kartı",
}

var taxKeywords = []string{
	"kdv", "k.d.v", "vergi", "tax", "vat",
}

var (
	taxIDPattern   = regexp.MustCompile(`(?i)(?:VKN|V\.K\.N|VERG[İI]\s*(?:K[İI]ML[İI]K)?\s*(?:NO|NUMARASI)?)[:\s]*(\d{10,11})`)
	taxRatePattern = regexp.MustCompile(`%\s*\d+`)
	taxRateAmount  = regexp.MustCompile(`%\s*\d+\s*[:\s]*(\d{1,3}(?:\.\d{3})*,\d{2}|\d+\.\d{2})`)
	numericLine    = regexp.MustCompile(`^[\d\s\-\./:,]+$`)
	tlToken        = regexp.MustCompile(`\bTL\b`)
)

var docNoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:F[İI]Ş|F[İI]S|BELGE|FATURA)\s*(?:NO|NUMARASI?)[:\s]*([A-Za-z0-9\-]+)`),
	regexp.MustCompile(`(?i)\b(?:NO|NUMARA)[:\s#]+([A-Za-z0-9\-]{3,})`),
}

// Address fragments that disqualify a header line as the vendor name.
var addressHints = []string{"sok.", "cad.", "mah.", "no:", "apt"}

// ExtractionService parses raw OCR text into candidate structured fields,
// each carrying its own confidence. Every field is extracted independently;
// a field with no extractable signal stays nil with confidence 0.
type ExtractionService struct {
	defaultCurrency string
	epoch           time.Time
	now             func() time.Time
}

// NewExtractionService creates an ExtractionService. Dates before epoch or
// after processing time are rejected as OCR misreads.
func NewExtractionService(defaultCurrency string, epoch time.Time) *ExtractionService {
	return &ExtractionService{
		defaultCurrency: defaultCurrency,
		epoch:           epoch,
		now:             time.Now,
	}
}

// Extract parses rawText. Empty or unparsable input returns all fields
// unresolved with confidence 0; that is a valid low-confidence result, not an
// error.
func (s *ExtractionService) Extract(rawText string) models.ExtractionResult {
	result := models.ExtractionResult{
		Currency:         s.defaultCurrency,
		FieldConfidences: emptyConfidences(),
	}
	if strings.TrimSpace(rawText) == "" {
		return result
	}

	lines := strings.Split(rawText, "\n")

	if name, ok := extractVendorName(lines); ok {
		result.VendorName = &name
		result.FieldConfidences[models.FieldVendorName] = confVendor
	}
	if taxID, ok := extractTaxID(rawText); ok {
		result.TaxID = &taxID
		result.FieldConfidences[models.FieldTaxID] = confAnchored
	}
	if docDate, ok := s.extractDate(rawText); ok {
		result.DocDate = &docDate
		result.FieldConfidences[models.FieldDocDate] = confAnchored
	}
	if docNo, ok := extractDocNo(rawText); ok {
		result.DocNo = &docNo
		result.FieldConfidences[models.FieldDocNo] = confDocNo
	}

	gross, grossConf := extractTotal(lines, rawText)
	if gross != nil {
		result.TotalGross = gross
		result.FieldConfidences[models.FieldTotalGross] = grossConf
	}

	tax := extractTax(lines)
	if tax != nil && gross != nil && tax.GreaterThan(*gross) {
		// A tax larger than the gross is a contradiction; leave the field
		// unresolved rather than guessing.
		tax = nil
	}
	if tax != nil {
		result.TotalTax = tax
		result.FieldConfidences[models.FieldTotalTax] = confTax
	}

	if gross != nil && tax != nil {
		net := gross.Sub(*tax)
		result.TotalNet = &net
	}

	if currency, ok := detectCurrency(rawText); ok {
		result.Currency = currency
		result.FieldConfidences[models.FieldCurrency] = confCurrency
	}

	return result
}

func emptyConfidences() map[string]float64 {
	return map[string]float64{
		models.FieldVendorName: 0,
		models.FieldTaxID:      0,
		models.FieldDocDate:    0,
		models.FieldDocNo:      0,
		models.FieldTotalGross: 0,
		models.FieldTotalTax:   0,
		models.FieldCurrency:   0,
	}
}

// extractVendorName takes the topmost plausible header line: receipts print
// the merchant name first.
func extractVendorName(lines []string) (string, bool) {
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) < 3 {
			continue
		}
		if numericLine.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)
		isAddress := false
		for _, hint := range addressHints {
			if strings.Contains(lower, hint) {
				isAddress = true
				break
			}
		}
		if isAddress {
			continue
		}
		return line, true
	}
	return "", false
}

func extractTaxID(text string) (string, bool) {
	if m := taxIDPattern.FindStringSubmatch(text); m != nil {
		if len(m[1]) == 10 || len(m[1]) == 11 {
			return m[1], true
		}
	}
	return "", false
}

// extractDate accepts the first well-formed date within the sane range
// [epoch, now].
func (s *ExtractionService) extractDate(text string) (time.Time, bool) {
	for i, pattern := range datePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			var day, year int
			var month time.Month
			switch {
			case i == 3: // DD MONTH YYYY
				day, _ = strconv.Atoi(m[1])
				month = turkishMonths[strings.ToLower(m[2])]
				year, _ = strconv.Atoi(m[3])
			case len(m[1]) == 4: // YYYY.MM.DD
				year, _ = strconv.Atoi(m[1])
				mo, _ := strconv.Atoi(m[2])
				month = time.Month(mo)
				day, _ = strconv.Atoi(m[3])
			default: // DD.MM.YYYY
				day, _ = strconv.Atoi(m[1])
				mo, _ := strconv.Atoi(m[2])
				month = time.Month(mo)
				year, _ = strconv.Atoi(m[3])
			}
			if month < time.January || month > time.December || day < 1 || day > 31 {
				continue
			}
			candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			// Reject round-trips like 31.02: time.Date normalizes them.
			if candidate.Day() != day || candidate.Month() != month {
				continue
			}
			if candidate.Before(s.epoch) || candidate.After(s.now()) {
				continue
			}
			return candidate, true
		}
	}
	return time.Time{}, false
}

func extractDocNo(text string) (string, bool) {
	for _, pattern := range docNoPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// extractTotal prefers the numerically largest amount on a line carrying a
// total anchor; without any anchored candidate it falls back to the largest
// amount anywhere, at reduced confidence.
func extractTotal(lines []string, text string) (*decimal.Decimal, float64) {
	var best *decimal.Decimal
	for _, line := range lines {
		lower := strings.ToLower(line)
		anchored := false
		for _, keyword := range totalKeywords {
			if strings.Contains(lower, keyword) {
				anchored = true
				break
			}
		}
		if !anchored {
			continue
		}
		for _, amount := range amountsInText(line) {
			if best == nil || amount.GreaterThan(*best) {
				v := amount
				best = &v
			}
		}
	}
	if best != nil {
		return best, confAnchored
	}

	for _, amount := range amountsInText(text) {
		if best == nil || amount.GreaterThan(*best) {
			v := amount
			best = &v
		}
	}
	if best != nil {
		return best, confFallback
	}
	return nil, 0
}

// extractTax looks for an amount on a line carrying a tax anchor. Rate lines
// like "KDV %18: 18,00" yield the amount after the rate, not the rate itself.
func extractTax(lines []string) *decimal.Decimal {
	for _, line := range lines {
		lower := strings.ToLower(line)
		anchored := false
		for _, keyword := range taxKeywords {
			if strings.Contains(lower, keyword) {
				anchored = true
				break
			}
		}
		if !anchored {
			continue
		}
		if taxRatePattern.MatchString(line) {
			if m := taxRateAmount.FindStringSubmatch(line); m != nil {
				if amount, err := parseAmount(m[1]); err == nil && amount.IsPositive() {
					return &amount
				}
			}
			continue
		}
		for _, amount := range amountsInText(line) {
			if amount.IsPositive() {
				v := amount
				return &v
			}
		}
	}
	return nil
}

func amountsInText(text string) []decimal.Decimal {
	var amounts []decimal.Decimal
	for _, pattern := range amountPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			amount, err := parseAmount(m[1])
			if err != nil || !amount.IsPositive() {
				continue
			}
			amounts = append(amounts, amount)
		}
	}
	return amounts
}

// parseAmount handles both the Turkish format (1.234,56) and plain
// dot-decimal (123.45).
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.NewReplacer("TL", "", "TRY", "", "₺", "", " ", "").Replace(cleaned)
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	return decimal.NewFromString(cleaned)
}

func detectCurrency(text string) (string, bool) {
	switch {
	case strings.Contains(text, "₺"), strings.Contains(text, "TRY"),
		tlToken.MatchString(text):
		return "TRY", true
	case strings.Contains(text, "€"), strings.Contains(text, "EUR"):
		return "EUR", true
	case strings.Contains(text, "$"), strings.Contains(text, "USD"):
		return "USD", true
	case strings.Contains(text, "£"), strings.Contains(text, "GBP"):
		return "GBP", true
	}
	return "", false
}
