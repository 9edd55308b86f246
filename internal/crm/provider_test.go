package crm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Provider
		wantErr bool
	}{
		{name: "hubspot lowercase", input: "hubspot", want: ProviderHubSpot},
		{name: "hubspot uppercase", input: "HUBSPOT", want: ProviderHubSpot},
		{name: "hubspot mixed case", input: "HubSpot", want: ProviderHubSpot},
		{name: "salesforce lowercase", input: "salesforce", want: ProviderSalesforce},
		{name: "salesforce uppercase", input: "SALESFORCE", want: ProviderSalesforce},
		{name: "surrounding whitespace", input: "  hubspot \t", want: ProviderHubSpot},
		{name: "unknown provider", input: "pipedrive", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownProvider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsInvalidInput(t *testing.T) {
	assert.True(t, IsInvalidInput(ErrUnknownProvider))
	assert.True(t, IsInvalidInput(ErrMissingID))
	assert.True(t, IsInvalidInput(ErrNoFields))
	assert.False(t, IsInvalidInput(ErrNotConnected))
	assert.False(t, IsInvalidInput(errors.New("boom")))
	assert.False(t, IsInvalidInput(&RequestError{Provider: ProviderHubSpot, StatusCode: 500}))
}

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{
		Provider:   ProviderSalesforce,
		Operation:  "create Contact",
		StatusCode: 401,
		Body:       "Session expired",
	}
	assert.Equal(t, "salesforce create Contact failed with status 401: Session expired", err.Error())
}
