package services

import (
	"errors"
	"strings"

	"statement-ingest/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownDialect = errors.New("unsupported statement format")
)

// Normalized column vocabularies shared by detection and mapping. Order
// within each group is the lookup priority.
var (
	dateKeys     = []string{"date", "time", "timestamp", "transactiondate", "txndate", "valuedate", "postingdate", "transdate"}
	amountKeys   = []string{"amount", "value", "amt", "transactionamount", "txnamount", "amountinr", "amountusd", "amounteur"}
	debitKeys    = []string{"debit", "withdrawal", "dr", "debitamount", "dramount", "withdrawalamt", "outflow"}
	creditKeys   = []string{"credit", "deposit", "cr", "creditamount", "cramount", "depositamt", "inflow"}
	descKeys     = []string{"description", "desc", "particulars", "details", "narration", "transactiondetails", "remarks", "memo", "originaldescription", "notes"}
	productKeys  = []string{"product", "item", "productname"}
	statusKeys   = []string{"status", "state", "transactionstatus"}
	typeKeys     = []string{"type", "transactiontype", "txntype", "drcr"}
	merchantKeys = []string{"merchant", "merchantname", "payee"}
	currencyKeys = []string{"currency", "currencycode", "curr"}
)

var (
	upiCreditKeywords     = []string{"credit", "refund", "receive", "salary", "deposit"}
	genericIncomeKeywords = []string{"income", "credit", "deposit"}
)

// formatMapper implements FormatMapperInterface
type formatMapper struct {
	normalizer NormalizerInterface
}

// NewFormatMapper creates a mapper using the given field normalizer.
func NewFormatMapper(normalizer NormalizerInterface) FormatMapperInterface {
	return &formatMapper{normalizer: normalizer}
}

// DetectDialect tests the dialect predicates in fixed priority order against
// the normalized header set. The first match wins; no match rejects the
// whole file.
func (m *formatMapper) DetectDialect(headers []string) (models.StatementDialect, error) {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}

	for _, dialect := range models.DialectPriority {
		if m.dialectMatches(dialect, set) {
			return dialect, nil
		}
	}
	return models.DialectUnknown, ErrUnknownDialect
}

func (m *formatMapper) dialectMatches(dialect models.StatementDialect, set map[string]struct{}) bool {
	switch dialect {
	case models.DialectGoogle:
		// Google Pay/Play exports carry a status column next to the amount
		// and either a product or payment-method column.
		return hasAny(set, amountKeys) && hasAny(set, dateKeys) &&
			hasAny(set, statusKeys) &&
			(hasAny(set, productKeys) || hasAny(set, []string{"paymentmethod", "transactionid"}))
	case models.DialectUPI:
		return hasAny(set, amountKeys) && hasAny(set, dateKeys) && hasAny(set, typeKeys)
	case models.DialectBank:
		return hasAny(set, dateKeys) && hasAny(set, debitKeys) && hasAny(set, creditKeys)
	case models.DialectGeneric:
		return hasAny(set, amountKeys) && hasAny(set, dateKeys)
	default:
		return false
	}
}

func hasAny(set map[string]struct{}, keys []string) bool {
	for _, key := range keys {
		if _, ok := set[key]; ok {
			return true
		}
	}
	return false
}

// MapRow produces a candidate from one raw row, or drops the row when a
// required field does not parse.
func (m *formatMapper) MapRow(dialect models.StatementDialect, row models.RawRow) (*models.TransactionCandidate, bool) {
	date, err := m.normalizer.ParseDate(row.Get(dateKeys...).Text())
	if err != nil {
		return nil, false
	}

	status := models.NormalizeStatus(row.Get(statusKeys...).Text())

	var amount decimal.Decimal
	var rawDescription, rawAmountText string

	switch dialect {
	case models.DialectGoogle:
		rawAmountText = row.Get(amountKeys...).Text()
		magnitude, err := m.parseMagnitude(row, amountKeys)
		if err != nil {
			return nil, false
		}
		if status == models.StatusRefunded {
			amount = magnitude
		} else {
			amount = magnitude.Neg()
		}
		rawDescription = firstText(row, productKeys, descKeys)

	case models.DialectBank:
		withdrawal, wErr := m.parseOptionalMagnitude(row, debitKeys)
		deposit, dErr := m.parseOptionalMagnitude(row, creditKeys)
		if wErr != nil || dErr != nil {
			return nil, false
		}
		switch {
		case deposit.IsPositive() && withdrawal.IsZero():
			amount = deposit
			rawAmountText = row.Get(creditKeys...).Text()
		case withdrawal.IsPositive() && deposit.IsZero():
			amount = withdrawal.Neg()
			rawAmountText = row.Get(debitKeys...).Text()
		default:
			// Both zero or both populated: ambiguous, drop the row.
			return nil, false
		}
		rawDescription = firstText(row, descKeys)

	case models.DialectUPI:
		rawAmountText = row.Get(amountKeys...).Text()
		magnitude, err := m.parseMagnitude(row, amountKeys)
		if err != nil {
			return nil, false
		}
		typeText := strings.ToLower(row.Get(typeKeys...).Text())
		if containsAny(typeText, upiCreditKeywords) {
			amount = magnitude
		} else {
			amount = magnitude.Neg()
		}
		rawDescription = firstText(row, descKeys, merchantKeys)

	case models.DialectGeneric:
		rawAmountText = row.Get(amountKeys...).Text()
		parsed, err := m.normalizer.ParseAmount(rawAmountText)
		if err != nil {
			return nil, false
		}
		typeText := strings.ToLower(row.Get(typeKeys...).Text())
		if containsAny(typeText, genericIncomeKeywords) {
			amount = parsed.Abs()
		} else {
			// Expense-style exports list spends as positive values, so
			// without an income marker the amount counts as an expense.
			amount = parsed.Abs().Neg()
		}
		rawDescription = firstText(row, descKeys, merchantKeys)

	default:
		return nil, false
	}

	description := m.normalizer.CleanDescription(rawDescription)
	merchant := row.Get(merchantKeys...).Text()
	if merchant == "" {
		merchant = m.normalizer.ExtractMerchant(rawDescription)
	}

	currency := strings.ToUpper(row.Get(currencyKeys...).Text())
	if currency == "" {
		currency = m.normalizer.DetectCurrency(rawAmountText)
	}

	return &models.TransactionCandidate{
		Date:          date,
		Amount:        amount,
		Currency:      currency,
		Description:   description,
		Category:      m.normalizer.Categorize(rawDescription),
		MerchantName:  merchant,
		PaymentMethod: m.normalizer.DetectPaymentMethod(rawDescription),
		Status:        status,
		Dialect:       dialect,
		RawData:       models.JSONBMap(row.ToMap()),
	}, true
}

// parseMagnitude parses a required amount cell to its absolute value. The
// dialect rules own the sign.
func (m *formatMapper) parseMagnitude(row models.RawRow, keys []string) (decimal.Decimal, error) {
	parsed, err := m.normalizer.ParseAmount(row.Get(keys...).Text())
	if err != nil {
		return decimal.Zero, err
	}
	return parsed.Abs(), nil
}

// parseOptionalMagnitude treats a missing cell as zero but still rejects a
// populated cell that does not parse.
func (m *formatMapper) parseOptionalMagnitude(row models.RawRow, keys []string) (decimal.Decimal, error) {
	cell := row.Get(keys...)
	if cell.IsEmpty() {
		return decimal.Zero, nil
	}
	parsed, err := m.normalizer.ParseAmount(cell.Text())
	if err != nil {
		return decimal.Zero, err
	}
	return parsed.Abs(), nil
}

func firstText(row models.RawRow, keyGroups ...[]string) string {
	for _, keys := range keyGroups {
		if text := row.Get(keys...).Text(); text != "" {
			return text
		}
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
