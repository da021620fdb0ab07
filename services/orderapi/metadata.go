package orderapi

// Metadata keys attached to a checkout session so that the webhook receiver
// can reconstruct the order without a second round trip to the buyer.
const (
	MetadataKeyProduct    = "product"
	MetadataKeyBuyerName  = "buyerName"
	MetadataKeyBuyerEmail = "buyerEmail"
	MetadataKeyBuyerPhone = "buyerPhone"

	// Gateways whose payment id is not known before creating the payment
	// carry a self-minted order reference in the metadata instead.
	MetadataKeyOrderReference = "orderReference"
)

func (b Buyer) ToMetadata(productTag string) map[string]string {
	return map[string]string{
		MetadataKeyProduct:    productTag,
		MetadataKeyBuyerName:  b.Name,
		MetadataKeyBuyerEmail: b.Email,
		MetadataKeyBuyerPhone: b.Phone,
	}
}

func BuyerFromMetadata(metadata map[string]string) (Buyer, string) {
	return Buyer{
		Name:  metadata[MetadataKeyBuyerName],
		Email: metadata[MetadataKeyBuyerEmail],
		Phone: metadata[MetadataKeyBuyerPhone],
	}, metadata[MetadataKeyProduct]
}

// MetadataFromAny normalizes gateway metadata: Mollie deserializes it into
// map[string]interface{} while Stripe keeps map[string]string.
func MetadataFromAny(value any) map[string]string {
	switch md := value.(type) {
	case map[string]string:
		return md
	case map[string]any:
		result := map[string]string{}
		for k, v := range md {
			s, ok := v.(string)
			if ok {
				result[k] = s
			}
		}
		return result
	default:
		return map[string]string{}
	}
}
