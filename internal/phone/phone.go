// Package phone validates and normalizes user-supplied phone numbers.
package phone

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "RU"

// Normalize parses raw using region for national-format numbers and returns
// it in E.164 form (e.g. "+79183394882"). Unparsable or invalid numbers
// yield an error wrapping common.ErrorValidation.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty phone number", common.ErrorValidation)
	}
	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w: invalid phone number format", common.ErrorValidation)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: invalid phone number", common.ErrorValidation)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
