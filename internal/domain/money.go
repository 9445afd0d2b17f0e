package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormatINR renders an amount with the rupee sign and Indian digit
// grouping: 150000 -> "₹1,50,000".
func FormatINR(amount int) string {
	return "₹" + formatGrouped(amount)
}

func formatGrouped(amount int) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.Itoa(amount)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		s = strings.Join(groups, ",") + "," + tail
	}
	if neg {
		s = "-" + s
	}
	return s
}

// Amount is a rupee amount that also decodes from the string form the
// upload form posts ("", "50000", "50,000").
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return a.parseString(s)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(f)
	return nil
}

// UnmarshalText lets form values and YAML scalars decode the same way.
func (a *Amount) UnmarshalText(b []byte) error {
	return a.parseString(string(b))
}

func (a *Amount) parseString(s string) error {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "₹"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", s, err)
	}
	*a = Amount(f)
	return nil
}
