package kyc

import (
	"regexp"
	"strings"
)

type MatchDecision struct {
	NamesMatch bool `json:"namesMatch"`
	// AddressesMatch is shown to the owner but never gates the decision.
	AddressesMatch bool   `json:"addressesMatch"`
	LicenseName    string `json:"licenseName"`
	StatementName  string `json:"statementName"`
}

// Normalize lowercases s and collapses every whitespace run to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NamesMatch compares two names exactly after normalization. Two empty names
// do not match.
func NamesMatch(a, b string) bool {
	return sameText(a, b)
}

func sameText(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// Match compares a license with a bank statement.
func Match(license, statement *ExtractedFields) MatchDecision {
	return MatchDecision{
		NamesMatch:     NamesMatch(license.FullName, statement.FullName),
		AddressesMatch: sameText(license.Address, statement.Address),
		LicenseName:    license.FullName,
		StatementName:  statement.FullName,
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Hyphenate turns a business name into a URL slug. Letters outside ASCII are
// kept, lowercased.
func Hyphenate(name string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// BuyNowLink is the personalised purchase link sent after verification.
func BuyNowLink(domain, businessName string) string {
	return "https://" + domain + "/buynow/" + Hyphenate(businessName)
}
