package productapi

// Tags identify the purchasable products of the site. They travel in
// checkout-session metadata and on order records, so changing one breaks
// correlation of in-flight payments.
const (
	TagWalkingTour = "walking-tour"
	TagMuseumGuide = "museum-guide"
	TagParisPass   = "paris-pass"
)

type Product struct {
	Tag           string
	Name          string
	Description   string
	AmountInCents int64
	Currency      string
	Digital       bool
}

var catalog = []Product{
	{
		Tag:           TagWalkingTour,
		Name:          "Guided walking tour",
		Description:   "Three-hour small-group walk through the Marais and Île de la Cité",
		AmountInCents: 4500,
		Currency:      "EUR",
		Digital:       false,
	},
	{
		Tag:           TagMuseumGuide,
		Name:          "Interactive museum guide",
		Description:   "Self-paced interactive guide for the Louvre and Musée d'Orsay",
		AmountInCents: 1900,
		Currency:      "EUR",
		Digital:       true,
	},
	{
		Tag:           TagParisPass,
		Name:          "Paris city pass",
		Description:   "All-access pass: every tour, every guide, priority booking",
		AmountInCents: 9900,
		Currency:      "EUR",
		Digital:       true,
	},
}

func All() []Product {
	products := make([]Product, len(catalog))
	copy(products, catalog)
	return products
}

func Find(tag string) (Product, bool) {
	for _, p := range catalog {
		if p.Tag == tag {
			return p, true
		}
	}
	return Product{}, false
}
