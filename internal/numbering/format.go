package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"rentapi/internal/model"
)

// Document number prefixes by kind.
const (
	PrefixInvoice = "INV"
	PrefixReceipt = "REC"
)

// PeriodOf returns the numbering period for an instant, encoded as
// year*100 + month (e.g. July 2025 -> 202507).
func PeriodOf(t time.Time) int {
	return t.Year()*100 + int(t.Month())
}

// Prefix returns the document number prefix for a kind.
func Prefix(kind model.DocumentKind) (string, error) {
	switch kind {
	case model.KindInvoice:
		return PrefixInvoice, nil
	case model.KindReceipt:
		return PrefixReceipt, nil
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
}

// Format renders the canonical document number {PREFIX}-{YYYYMM}-{SEQ}.
// The sequence is zero-padded to 4 digits; sequences of 10000 and above
// render with their natural width.
func Format(kind model.DocumentKind, period, sequence int) (string, error) {
	prefix, err := Prefix(kind)
	if err != nil {
		return "", err
	}
	if err := validatePeriod(period); err != nil {
		return "", err
	}
	if sequence < 1 {
		return "", fmt.Errorf("sequence must be positive, got %d", sequence)
	}
	return fmt.Sprintf("%s-%06d-%04d", prefix, period, sequence), nil
}

// Parse recovers the exact (kind, period, sequence) tuple from a formatted
// document number. It is the inverse of Format.
func Parse(number string) (model.DocumentKind, int, int, error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed document number %q", number)
	}

	var kind model.DocumentKind
	switch parts[0] {
	case PrefixInvoice:
		kind = model.KindInvoice
	case PrefixReceipt:
		kind = model.KindReceipt
	default:
		return "", 0, 0, fmt.Errorf("unknown prefix %q in document number %q", parts[0], number)
	}

	if len(parts[1]) != 6 {
		return "", 0, 0, fmt.Errorf("malformed period in document number %q", number)
	}
	period, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed period in document number %q", number)
	}
	if err := validatePeriod(period); err != nil {
		return "", 0, 0, fmt.Errorf("invalid period in document number %q: %w", number, err)
	}

	if len(parts[2]) < 4 {
		return "", 0, 0, fmt.Errorf("malformed sequence in document number %q", number)
	}
	sequence, err := strconv.Atoi(parts[2])
	if err != nil || sequence < 1 {
		return "", 0, 0, fmt.Errorf("malformed sequence in document number %q", number)
	}

	return kind, period, sequence, nil
}

func validatePeriod(period int) error {
	month := period % 100
	year := period / 100
	if year < 1 || month < 1 || month > 12 {
		return fmt.Errorf("invalid period %d", period)
	}
	return nil
}
