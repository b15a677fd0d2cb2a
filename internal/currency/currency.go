// Package currency converts amounts using a rate table expressed against a
// single pivot currency, and loads such tables from a remote provider.
package currency

import (
	"errors"
	"math"
	"slices"
	"strings"
)

var ErrRatesUnavailable = errors.New("exchange rates unavailable")

// Rates maps ISO codes to units per one unit of the pivot currency. The
// pivot itself maps to 1.
type Rates map[string]float64

// Convert expresses amount, given in from, in to. Both rates must come from
// the same table. A currency missing from rates yields NaN; a zero source
// rate yields an infinity. Nothing is rounded.
func Convert(rates Rates, from, to string, amount float64) float64 {
	fromRate, ok := rates[from]
	if !ok {
		return math.NaN()
	}
	toRate, ok := rates[to]
	if !ok {
		return math.NaN()
	}
	return amount * toRate / fromRate
}

// Has reports whether every code is present in rates.
func (r Rates) Has(codes ...string) bool {
	for _, c := range codes {
		if _, ok := r[c]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (r Rates) Clone() Rates {
	out := make(Rates, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

var supported = []string{
	"USD", "AED", "AFN", "ALL", "AMD", "ANG", "AOA", "ARS", "AUD", "AWG", "AZN",
	"BAM", "BBD", "BDT", "BGN", "BHD", "BIF", "BMD", "BND", "BOB", "BRL", "BSD",
	"BTN", "BWP", "BYN", "BZD", "CAD", "CDF", "CHF", "CLP", "CNY", "COP", "CRC",
	"CUP", "CVE", "CZK", "DJF", "DKK", "DOP", "DZD", "EGP", "ERN", "ETB", "EUR",
	"FJD", "FKP", "FOK", "GBP", "GEL", "GGP", "GHS", "GIP", "GMD", "GNF", "GTQ",
	"GYD", "HKD", "HNL", "HRK", "HTG", "HUF", "IDR", "ILS", "IMP", "INR", "IQD",
	"IRR", "ISK", "JEP", "JMD", "JOD", "JPY", "KES", "KGS", "KHR", "KID", "KMF",
	"KRW", "KWD", "KYD", "KZT", "LAK", "LBP", "LKR", "LRD", "LSL", "LYD", "MAD",
	"MDL", "MGA", "MKD", "MMK", "MNT", "MOP", "MRU", "MUR", "MVR", "MWK", "MXN",
	"MYR", "MZN", "NAD", "NGN", "NIO", "NOK", "NPR", "NZD", "OMR", "PAB", "PEN",
	"PGK", "PHP", "PKR", "PLN", "PYG", "QAR", "RON", "RSD", "RUB", "RWF", "SAR",
	"SBD", "SCR", "SDG", "SEK", "SGD", "SHP", "SLE", "SLL", "SOS", "SRD", "SSP",
	"STN", "SYP", "SZL", "THB", "TJS", "TMT", "TND", "TOP", "TRY", "TTD", "TVD",
	"TWD", "TZS", "UAH", "UGX", "UYU", "UZS", "VES", "VND", "VUV", "WST", "XAF",
	"XCD", "XDR", "XOF", "XPF", "YER", "ZAR", "ZMW", "ZWL",
}

// Supported lists the currency codes the rate provider publishes, USD first.
func Supported() []string {
	return slices.Clone(supported)
}

// IsSupported reports whether code (any case) is a supported currency.
func IsSupported(code string) bool {
	return slices.Contains(supported, strings.ToUpper(strings.TrimSpace(code)))
}
