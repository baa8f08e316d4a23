package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"statement-ingest/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrUnparseableDate   = errors.New("date did not match any known format")
	ErrUnparseableAmount = errors.New("amount is empty or not numeric")
)

const (
	maxDescriptionLength = 48
	fallbackDescription  = "Transaction"
)

// dateParser attempts one date format. ok is false when the value does not
// match this parser's shape; the chain moves on to the next one.
type dateParser func(value string) (time.Time, bool)

// categoryRule is one ordered keyword rule. Rules are tested top to bottom
// against the lowercased description; the first hit wins.
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{"Income", []string{"salary", "payroll", "interest credit", "dividend", "refund", "cashback"}},
	{"Subscriptions", []string{"netflix", "spotify", "prime", "hotstar", "disney", "subscription", "google one", "play pass", "youtube premium"}},
	{"Food & Dining", []string{"swiggy", "zomato", "restaurant", "cafe", "pizza", "burger", "mcdonalds", "kfc", "dominos", "subway", "starbucks", "food"}},
	{"Groceries", []string{"blinkit", "zepto", "bigbasket", "grofers", "dmart", "reliance fresh", "grocery", "supermarket"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "ajio", "mall", "store", "retail", "shopping"}},
	{"Transport", []string{"uber", "ola", "rapido", "irctc", "railway", "metro", "fuel", "petrol", "diesel", "transport"}},
	{"Utilities", []string{"electricity", "water bill", "gas bill", "recharge", "jio", "airtel", "vodafone", "broadband", "utility"}},
	{"Healthcare", []string{"pharmacy", "hospital", "clinic", "apollo", "medical", "health"}},
	{"Education", []string{"school", "college", "university", "course", "udemy", "coursera", "tuition"}},
	{"Entertainment", []string{"movie", "cinema", "theatre", "bookmyshow", "gaming", "entertainment"}},
	{"Finance", []string{"emi", "loan", "insurance", "mutual fund", "sip", "investment", "brokerage"}},
}

var (
	currencyPrefixRe = regexp.MustCompile(`^[A-Za-z₹$€£¥]+\s*`)
	currencySymbolRe = regexp.MustCompile(`[₹$€£¥\s]`)
	noiseTokenRe     = regexp.MustCompile(`^[A-Za-z]*\d[A-Za-z0-9]*$`)

	paymentMethodRes = []struct {
		method string
		re     *regexp.Regexp
	}{
		{models.PaymentMethodUPI, regexp.MustCompile(`(?i)\bUPI\b|\bUPI[/-]`)},
		{models.PaymentMethodPOS, regexp.MustCompile(`(?i)\bPOS\b`)},
		{models.PaymentMethodATM, regexp.MustCompile(`(?i)\bATM\b|\bATM\s+WDL\b`)},
		{models.PaymentMethodNEFT, regexp.MustCompile(`(?i)\bNEFT\b`)},
		{models.PaymentMethodIMPS, regexp.MustCompile(`(?i)\bIMPS\b`)},
		{models.PaymentMethodCash, regexp.MustCompile(`(?i)\bCASH\s+(DEPOSIT|WITHDRAWAL|DEP|WDL)\b`)},
	}

	noiseWords = map[string]struct{}{
		"upi": {}, "neft": {}, "imps": {}, "rtgs": {}, "ach": {}, "inb": {},
		"pos": {}, "atm": {}, "wdl": {}, "mbk": {}, "ecom": {},
		"hdfc": {}, "icici": {}, "sbi": {}, "axis": {}, "kotak": {}, "yes": {},
		"bank": {}, "txn": {}, "ref": {}, "payment": {}, "transfer": {},
	}
)

// normalizer implements NormalizerInterface
type normalizer struct {
	dateParsers []dateParser
}

// NewNormalizer creates the shared field-level parser set.
func NewNormalizer() NormalizerInterface {
	n := &normalizer{}
	n.dateParsers = []dateParser{
		n.parseSeparatedDateTime('/'),
		n.parseSeparatedDateTime('-'),
		n.parseVerboseDateTime,
		n.parseFallbackDate,
	}
	return n
}

// ParseDate tries each date format in fixed order and returns the first
// success. All times are interpreted as UTC.
func (n *normalizer) ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrUnparseableDate
	}

	for _, parse := range n.dateParsers {
		if t, ok := parse(value); ok {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparseableDate
}

// parseSeparatedDateTime handles D/M/YY[YY] and D-M-YY[YY], optionally
// followed by h:mm or h:mm:ss. Day-first order, as in the source exports.
func (n *normalizer) parseSeparatedDateTime(sep rune) dateParser {
	return func(value string) (time.Time, bool) {
		datePart := value
		timePart := ""
		if idx := strings.IndexAny(value, " "); idx > 0 {
			datePart = value[:idx]
			timePart = strings.TrimSpace(value[idx+1:])
		}

		fields := strings.Split(datePart, string(sep))
		if len(fields) != 3 {
			return time.Time{}, false
		}

		day, err1 := strconv.Atoi(fields[0])
		month, err2 := strconv.Atoi(fields[1])
		year, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return time.Time{}, false
		}
		if len(fields[2]) == 2 {
			year += 2000
		}
		// Year-first values like 2026/01/07 show up in some exports.
		if len(fields[0]) == 4 && day > 31 {
			day, year = fields2Int(fields[2]), fields2Int(fields[0])
		}
		if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 || year > 2200 {
			return time.Time{}, false
		}

		hour, min, sec, ok := parseClock(timePart)
		if !ok {
			return time.Time{}, false
		}

		t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
		if t.Day() != day || t.Month() != time.Month(month) {
			return time.Time{}, false
		}
		return t, true
	}
}

// parseVerboseDateTime handles forms like "7 Feb 2026, 09:44".
func (n *normalizer) parseVerboseDateTime(value string) (time.Time, bool) {
	fixed := fixShortMonth(value)
	layouts := []string{
		"2 Jan 2006, 15:04",
		"2 Jan 2006, 15:04:05",
		"2 January 2006, 15:04",
		"2 Jan 2006",
		"2 January 2006",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, fixed, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseFallbackDate is the last resort: common machine formats.
func (n *normalizer) parseFallbackDate(value string) (time.Time, bool) {
	fixed := fixShortMonth(value)
	layouts := []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, fixed, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fixShortMonth repairs the "Sept" abbreviation some exporters emit, which
// no Go layout accepts.
func fixShortMonth(value string) string {
	return strings.Replace(value, "Sept ", "Sep ", 1)
}

func parseClock(value string) (hour, min, sec int, ok bool) {
	if value == "" {
		return 0, 0, 0, true
	}
	fields := strings.Split(value, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, 0, false
	}
	var err error
	if hour, err = strconv.Atoi(fields[0]); err != nil || hour > 23 {
		return 0, 0, 0, false
	}
	if min, err = strconv.Atoi(fields[1]); err != nil || min > 59 {
		return 0, 0, 0, false
	}
	if len(fields) == 3 {
		if sec, err = strconv.Atoi(fields[2]); err != nil || sec > 59 {
			return 0, 0, 0, false
		}
	}
	return hour, min, sec, true
}

func fields2Int(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// ParseAmount strips currency symbols, whitespace, thousands separators and
// parentheses, then parses the remainder as a decimal. Parentheses carry no
// sign here; the dialect mapper decides signs. Empty or non-numeric input is
// an error, never zero.
func (n *normalizer) ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return decimal.Zero, ErrUnparseableAmount
	}

	// Leading currency codes like "INR 299.00".
	cleaned = currencyPrefixRe.ReplaceAllString(cleaned, "")
	cleaned = currencySymbolRe.ReplaceAllString(cleaned, "")
	cleaned = strings.NewReplacer("(", "", ")", "", ",", "").Replace(cleaned)

	if cleaned == "" || cleaned == "-" || cleaned == "+" {
		return decimal.Zero, ErrUnparseableAmount
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrUnparseableAmount
	}
	return amount, nil
}

var currencyMarkers = []struct {
	marker string
	code   string
}{
	{"₹", "INR"},
	{"RS.", "INR"},
	{"INR", "INR"},
	{"$", "USD"},
	{"USD", "USD"},
	{"€", "EUR"},
	{"EUR", "EUR"},
	{"£", "GBP"},
	{"GBP", "GBP"},
	{"¥", "JPY"},
}

// DetectCurrency resolves an ISO currency code from the symbol or code
// embedded in a raw amount cell. Unmarked amounts default to INR, the
// currency of the supported statement exports.
func (n *normalizer) DetectCurrency(value string) string {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, m := range currencyMarkers {
		if strings.Contains(upper, m.marker) {
			return m.code
		}
	}
	return "INR"
}

// CleanDescription reduces a raw narration to a short human-readable label.
// Segments are split on /, | and >; noise tokens (reference codes, bank
// names, transfer rails) are discarded; the first usable segment is
// title-cased and truncated.
func (n *normalizer) CleanDescription(value string) string {
	segments := strings.FieldsFunc(value, func(r rune) bool {
		return r == '/' || r == '|' || r == '>'
	})

	for _, segment := range segments {
		words := strings.Fields(segment)
		kept := make([]string, 0, len(words))
		for _, word := range words {
			if isNoiseToken(word) {
				continue
			}
			kept = append(kept, word)
		}
		if len(kept) == 0 {
			continue
		}
		return truncateWithEllipsis(titleCase(strings.Join(kept, " ")), maxDescriptionLength)
	}

	return fallbackDescription
}

func isNoiseToken(word string) bool {
	lower := strings.ToLower(strings.Trim(word, ".,:-"))
	if lower == "" {
		return true
	}
	if _, ok := noiseWords[lower]; ok {
		return true
	}
	// Reference codes: any token containing a digit.
	return noiseTokenRe.MatchString(lower)
}

func titleCase(value string) string {
	words := strings.Fields(strings.ToLower(value))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func truncateWithEllipsis(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

// Categorize applies the ordered keyword rules to the lowercased
// description. The first matching rule wins; no match means "Misc".
func (n *normalizer) Categorize(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return "Misc"
}

// ExtractMerchant derives a merchant name from a narration: the cleaned
// description with any trailing location token removed.
func (n *normalizer) ExtractMerchant(description string) string {
	cleaned := n.CleanDescription(description)
	if cleaned == fallbackDescription {
		return ""
	}
	return cleaned
}

// DetectPaymentMethod tags a description with the transfer rail it mentions.
func (n *normalizer) DetectPaymentMethod(description string) string {
	for _, pm := range paymentMethodRes {
		if pm.re.MatchString(description) {
			return pm.method
		}
	}
	return models.PaymentMethodOther
}
