package orderapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuyerValidate(t *testing.T) {
	testCases := []struct {
		name        string
		buyer       Buyer
		expectError bool
	}{
		{
			name:  "Complete buyer",
			buyer: Buyer{Name: "Kovács Éva", Email: "eva@example.com", Phone: "+36201234567"},
		},
		{
			name:  "Phone is optional",
			buyer: Buyer{Name: "Kovács Éva", Email: "eva@example.com"},
		},
		{
			name:        "Missing name",
			buyer:       Buyer{Email: "eva@example.com"},
			expectError: true,
		},
		{
			name:        "Missing email",
			buyer:       Buyer{Name: "Kovács Éva"},
			expectError: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.buyer.Validate()
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	buyer := Buyer{Name: "Kovács Éva", Email: "eva@example.com", Phone: "+36201234567"}

	metadata := buyer.ToMetadata("museum-guide")
	assert.Equal(t, "eva@example.com", metadata[MetadataKeyBuyerEmail])

	parsedBuyer, product := BuyerFromMetadata(metadata)
	assert.Equal(t, buyer, parsedBuyer)
	assert.Equal(t, "museum-guide", product)
}

func TestMetadataFromAny(t *testing.T) {
	t.Run("String map passes through", func(t *testing.T) {
		md := MetadataFromAny(map[string]string{"product": "paris-pass"})
		assert.Equal(t, "paris-pass", md["product"])
	})

	t.Run("Loose map is converted", func(t *testing.T) {
		md := MetadataFromAny(map[string]any{"product": "paris-pass", "count": 3})
		assert.Equal(t, "paris-pass", md["product"])
		_, found := md["count"]
		assert.False(t, found)
	})

	t.Run("Nil yields empty map", func(t *testing.T) {
		md := MetadataFromAny(nil)
		assert.Empty(t, md)
	})
}
