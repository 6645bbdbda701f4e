package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback data is the only input channel an attacker fully controls, so
// every payload goes through one strict decoder: known verb, exact field
// count, integer fields, no negatives. Anything else is rejected before a
// handler sees it.

// Static callback verbs.
const (
	cbBuy        = "buy"
	cbMainMenu   = "main_menu"
	cbFreeTrial  = "freetrial"
	cbMyServices = "my_services"
)

// Parameterized verb prefixes.
const (
	cbPlan           = "plan"
	cbTariff         = "tariff"
	cbCancelPurchase = "cancelPurchase"
	cbConfirmPayment = "confirm_payment"
	cbRejectPayment  = "reject_payment"
)

// Quote verbs carry the full negotiation state so handlers stay
// stateless between taps.
const (
	verbRegion     = "region"
	verbAddUser    = "addUser"
	verbRemoveUser = "removeUser"
	verbAddGig     = "addGig"
	verbRemoveGig  = "removeGig"
	verbPaid       = "paid"
)

// Telegram rejects callback data over 64 bytes; we enforce it at encode
// time so the failure surfaces in tests, not in production sends.
const maxCallbackBytes = 64

var errBadPayload = fmt.Errorf("malformed callback payload")

// quotePayload is the negotiation state carried inside callback data.
type quotePayload struct {
	Verb       string
	TariffID   int64
	CountryID  int64
	ExtraUsers int
	ExtraGB    int
}

func (p quotePayload) encode() string {
	data := fmt.Sprintf("%s_%d_%d_%d_%d", p.Verb, p.TariffID, p.CountryID, p.ExtraUsers, p.ExtraGB)
	if len(data) > maxCallbackBytes {
		// Unreachable with sane catalog ids; kept as a tripwire.
		panic(fmt.Sprintf("callback payload over %d bytes: %s", maxCallbackBytes, data))
	}
	return data
}

func isQuoteVerb(verb string) bool {
	switch verb {
	case verbRegion, verbAddUser, verbRemoveUser, verbAddGig, verbRemoveGig, verbPaid:
		return true
	}
	return false
}

// parseQuotePayload decodes "{verb}_{tariff}_{country}_{users}_{gb}".
func parseQuotePayload(data string) (quotePayload, error) {
	parts := strings.Split(data, "_")
	if len(parts) != 5 || !isQuoteVerb(parts[0]) {
		return quotePayload{}, fmt.Errorf("%w: %q", errBadPayload, data)
	}

	nums := make([]int64, 4)
	for i, raw := range parts[1:] {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return quotePayload{}, fmt.Errorf("%w: %q", errBadPayload, data)
		}
		nums[i] = n
	}

	return quotePayload{
		Verb:       parts[0],
		TariffID:   nums[0],
		CountryID:  nums[1],
		ExtraUsers: int(nums[2]),
		ExtraGB:    int(nums[3]),
	}, nil
}

// encodeID builds "{verb}_{id}" payloads (plan, tariff, cancelPurchase,
// confirm_payment, reject_payment).
func encodeID(verb string, id int64) string {
	return fmt.Sprintf("%s_%d", verb, id)
}

// parseSuffixID extracts the id from a "{verb}_{id}" payload after the
// router already matched the verb prefix.
func parseSuffixID(verb, data string) (int64, error) {
	raw, ok := strings.CutPrefix(data, verb+"_")
	if !ok {
		return 0, fmt.Errorf("%w: %q", errBadPayload, data)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", errBadPayload, data)
	}
	return id, nil
}
