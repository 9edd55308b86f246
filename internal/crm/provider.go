package crm

import "strings"

// Provider identifies one of the supported CRM backends. The set is
// closed: dispatch happens once at the transport boundary and the tag
// is never re-inspected deeper in the call chain.
type Provider string

const (
	ProviderHubSpot    Provider = "hubspot"
	ProviderSalesforce Provider = "salesforce"
)

// ParseProvider resolves a caller-supplied provider tag. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ProviderHubSpot):
		return ProviderHubSpot, nil
	case string(ProviderSalesforce):
		return ProviderSalesforce, nil
	default:
		return "", ErrUnknownProvider
	}
}

// String returns the canonical lowercase tag
func (p Provider) String() string {
	return string(p)
}
