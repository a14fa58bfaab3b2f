// Package phone normalizes applicant phone numbers with libphonenumber.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion applies to numbers typed without a country code.
const DefaultRegion = "US"

// NormalizeE164 returns input in E.164 form, assuming DefaultRegion. Input
// that is not a valid number comes back trimmed but otherwise untouched.
func NormalizeE164(input string) string {
	return NormalizeE164In(input, DefaultRegion)
}

func NormalizeE164In(input, region string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if num, err := phonenumbers.Parse(input, region); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}
	return input
}

// Digits drops the leading plus. Messaging gateways address numbers this way.
func Digits(e164 string) string {
	return strings.TrimPrefix(strings.TrimSpace(e164), "+")
}
