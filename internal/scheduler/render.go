package scheduler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rentapi/internal/deadline"
)

// message is a rendered notification candidate. titleCode is the stable
// identifier fed into the dedupe key; Title is display text and may be
// reworded without breaking suppression.
type message struct {
	titleCode  string
	title      string
	body       string
	subjectRef string
}

var tierTitles = map[deadline.SubjectKind]map[deadline.Tier]string{
	deadline.SubjectInvoice: {
		deadline.TierImminent: "Invoice Due Tomorrow",
		deadline.TierNear:     "Invoice Due Soon",
		deadline.TierUpcoming: "Upcoming Invoice Due",
	},
	deadline.SubjectContract: {
		deadline.TierImminent: "Contract Expires Tomorrow",
		deadline.TierNear:     "Contract Expiring Soon",
		deadline.TierUpcoming: "Upcoming Contract Expiration",
	},
}

// renderReminder builds the title/body pair for one classified candidate.
func renderReminder(c deadline.Candidate) (message, error) {
	titles, ok := tierTitles[c.Subject.Kind]
	if !ok {
		return message{}, fmt.Errorf("no titles for subject kind %q", c.Subject.Kind)
	}
	title, ok := titles[c.Tier]
	if !ok {
		return message{}, fmt.Errorf("no title for tier %s", c.Tier)
	}

	m := message{
		titleCode:  fmt.Sprintf("%s_%s", c.Subject.Kind, c.Tier),
		title:      title,
		subjectRef: c.Subject.Name,
	}

	due := c.Subject.Deadline.Format("02 Jan 2006")
	switch c.Subject.Kind {
	case deadline.SubjectInvoice:
		m.body = fmt.Sprintf("Invoice %s amounting to Rp %s is due in %d day(s) on %s.",
			c.Subject.Name, formatAmount(c.Subject.Amount), c.DaysRemaining, due)
	case deadline.SubjectContract:
		m.body = fmt.Sprintf("The contract for room %s expires in %d day(s) on %s.",
			c.Subject.Name, c.DaysRemaining, due)
	}

	return m, nil
}

// formatAmount renders a decimal with thousands separators, e.g. 18000 ->
// "18,000" and 1234567.5 -> "1,234,567.5".
func formatAmount(d decimal.Decimal) string {
	s := d.String()

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
