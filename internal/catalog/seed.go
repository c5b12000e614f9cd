package catalog

import "github.com/shopspring/decimal"

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic("catalog: bad seed price " + s)
	}
	return v
}

// Seed returns the bootstrap catalog used until a real product feed is
// wired in. Quantity breaks and sourcing options mirror the wholesale
// price lists the storefront imports from.
func Seed() []Product {
	return []Product{
		{
			ID:           "prod-kraft-mailer-a4",
			Title:        "Kraft Paper Mailer Box A4",
			Slug:         "kraft-paper-mailer-box-a4",
			Brand:        "PackRight",
			Category:     "packaging",
			SalePrice:    d("45.99"),
			RegularPrice: d("58.00"),
			MOQ:          10,
			Stock:        12000,
			VariablePricing: []map[string]float64{
				{"1-15": 45.99},
				{"16-100": 41.50},
				{">100": 36.75},
			},
			Variants: []Variant{
				{SKU: "KPM-A4-BRN", Label: "Brown", Attributes: map[string]string{"color": "brown"}},
				{SKU: "KPM-A4-WHT", Label: "White", Attributes: map[string]string{"color": "white"}},
			},
			Images: []string{
				"https://img.sourcemart.io/products/kraft-mailer-a4-front.jpg",
				"https://img.sourcemart.io/products/kraft-mailer-a4-stack.jpg",
			},
		},
		{
			ID:           "prod-usb-c-cable-1m",
			Title:        "USB-C Braided Charging Cable 1m",
			Slug:         "usb-c-braided-charging-cable-1m",
			Brand:        "VoltEdge",
			Category:     "electronics",
			SalePrice:    d("89.00"),
			RegularPrice: d("129.00"),
			MOQ:          25,
			Stock:        8400,
			VariablePricing: []map[string]float64{
				{"1-50": 89.00},
				{"51-250": 79.50},
				{"251-1000": 68.00},
				{">1000": 59.00},
			},
			Variants: []Variant{
				{SKU: "UCB-1M-BLK", Label: "Black", Attributes: map[string]string{"color": "black"}},
				{SKU: "UCB-1M-RED", Label: "Red", Attributes: map[string]string{"color": "red"}},
				{SKU: "UCB-1M-GRY", Label: "Space Grey", Attributes: map[string]string{"color": "grey"}},
			},
			Images: []string{
				"https://img.sourcemart.io/products/usb-c-cable-coil.jpg",
			},
		},
		{
			ID:           "prod-cotton-tote-plain",
			Title:        "Plain Cotton Tote Bag 140gsm",
			Slug:         "plain-cotton-tote-bag-140gsm",
			Brand:        "WeaveWorks",
			Category:     "bags",
			SalePrice:    d("32.50"),
			RegularPrice: d("40.00"),
			MOQ:          50,
			Stock:        20000,
			VariablePricing: []map[string]float64{
				{"1-100": 32.50},
				{"101-500": 28.75},
				{">500": 24.90},
			},
			Variants: []Variant{
				{SKU: "CTB-NAT", Label: "Natural", Attributes: map[string]string{"color": "natural"}},
				{SKU: "CTB-BLK", Label: "Black", Attributes: map[string]string{"color": "black"}},
			},
			Images: []string{
				"https://img.sourcemart.io/products/cotton-tote-natural.jpg",
				"https://img.sourcemart.io/products/cotton-tote-black.jpg",
			},
		},
		{
			ID:           "prod-led-strip-5m",
			Title:        "LED Strip Light 5m 12V Warm White",
			Slug:         "led-strip-light-5m-12v-warm-white",
			Brand:        "VoltEdge",
			Category:     "electronics",
			SalePrice:    d("240.00"),
			RegularPrice: d("310.00"),
			MOQ:          5,
			Stock:        1500,
			VariablePricing: []map[string]float64{
				{"1-10": 240.00},
				{"11-50": 218.00},
				{">50": 199.00},
			},
			Images: []string{
				"https://img.sourcemart.io/products/led-strip-5m-reel.jpg",
			},
		},
		{
			ID:           "prod-thermal-rolls-57mm",
			Title:        "Thermal Paper Rolls 57x40mm (Pack of 20)",
			Slug:         "thermal-paper-rolls-57x40mm-pack-20",
			Brand:        "PackRight",
			Category:     "packaging",
			SalePrice:    d("155.00"),
			RegularPrice: d("185.00"),
			MOQ:          2,
			Stock:        640,
			VariablePricing: []map[string]float64{
				{"1-20": 155.00},
				{">20": 139.00},
			},
			Images: []string{
				"https://img.sourcemart.io/products/thermal-rolls-stack.jpg",
			},
		},
		{
			ID:           "prod-silicone-spatula-set",
			Title:        "Silicone Spatula Set of 4",
			Slug:         "silicone-spatula-set-of-4",
			Brand:        "HomeCrest",
			Category:     "kitchen",
			SalePrice:    d("120.00"),
			RegularPrice: d("160.00"),
			MOQ:          12,
			Stock:        0,
			VariablePricing: []map[string]float64{
				{"1-24": 120.00},
				{">24": 104.00},
			},
			Variants: []Variant{
				{SKU: "SSS-4-TEAL", Label: "Teal", Attributes: map[string]string{"color": "teal"}},
			},
			Images: []string{
				"https://img.sourcemart.io/products/spatula-set-teal.jpg",
			},
		},
		{
			ID:           "prod-bubble-wrap-100m",
			Title:        "Bubble Wrap Roll 100m x 1m",
			Slug:         "bubble-wrap-roll-100m",
			Brand:        "PackRight",
			Category:     "packaging",
			SalePrice:    d("880.00"),
			RegularPrice: d("1050.00"),
			MOQ:          1,
			Stock:        220,
			VariablePricing: []map[string]float64{
				{"1-5": 880.00},
				{"6-20": 820.00},
				{">20": 760.00},
			},
			Images: []string{
				"https://img.sourcemart.io/products/bubble-wrap-roll.jpg",
			},
		},
		{
			ID:           "prod-steel-water-bottle",
			Title:        "Stainless Steel Water Bottle 750ml",
			Slug:         "stainless-steel-water-bottle-750ml",
			Brand:        "HomeCrest",
			Category:     "kitchen",
			SalePrice:    d("210.00"),
			RegularPrice: d("280.00"),
			MOQ:          20,
			Stock:        5200,
			VariablePricing: []map[string]float64{
				{"1-50": 210.00},
				{"51-200": 188.00},
				{">200": 169.00},
			},
			Variants: []Variant{
				{SKU: "SWB-750-SLV", Label: "Silver", Attributes: map[string]string{"finish": "silver"}},
				{SKU: "SWB-750-MAT", Label: "Matte Black", Attributes: map[string]string{"finish": "matte-black"}},
			},
			Images: []string{
				"https://img.sourcemart.io/products/steel-bottle-silver.jpg",
				"https://img.sourcemart.io/products/steel-bottle-matte.jpg",
			},
		},
	}
}
