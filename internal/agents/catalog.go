package agents

// Products are the terminals the recommender chooses from, in table order.
var Products = []string{"Station Duo", "Station Solo", "Mini", "Flex", "Go", "Virtual Terminal"}

// Feature is one row of the product comparison table. Values line up with
// Products.
type Feature struct {
	Name   string
	Values []string
}

const txOnly = "No (Primary function is transaction processing)"

var Features = []Feature{
	{"Target Business Type/Size", []string{
		"High-volume retail, full-service restaurants",
		"Retail, quick-service restaurants",
		"Retail, quick-service restaurants, services",
		"Mobile businesses, restaurants (tableside), services (on-location)",
		"Mobile businesses, low transaction volume, services (on-the-go)",
		"Businesses accepting payments remotely, services (invoicing)",
	}},
	{"Mode of Operation", []string{
		"Stationary, Counter Service",
		"Stationary, Counter Service",
		"Stationary, Compact Countertop",
		"Mobile, Handheld",
		"Mobile, Connects to Smartphone/Tablet",
		"Software-only, Web-based",
	}},
	{"Key Hardware Features", []string{
		"Dual screens, high-speed printer, cash drawer",
		"Large merchant screen, receipt printer, cash drawer option",
		"Compact design, touchscreen, built-in printer",
		"Portable, touchscreen, built-in printer, barcode scanner, long battery",
		"Mobile card reader",
		"None (software only)",
	}},
	{"Payment Acceptance", []string{
		"Robust processing, various payment types",
		"Strong processing, various payment types",
		"Accepts various payment types",
		"Accepts various payment types",
		"Accepts swipe, dip, tap payments",
		"Accept payments by phone or online",
	}},
	{"Inventory Management", []string{"Yes", "Yes", "Yes", "Yes", "No (Basic tracking via app might be possible)", "No"}},
	{"Order Management", []string{
		"Yes (includes table management for restaurants)",
		"Yes",
		"Yes",
		"Yes (tableside ordering capable)",
		"Basic via app",
		"N/A",
	}},
	{"Customer Engagement/Loyalty", []string{
		"Yes (Loyalty programs, feedback)",
		"Yes (Loyalty programs, feedback)",
		"Yes (Loyalty programs, feedback)",
		"Yes (Loyalty programs, feedback)",
		"Basic via app (Customer engagement)",
		"Basic via app (Customer engagement)",
	}},
	{"Employee Management", []string{"Yes", "Yes", "Yes", "Yes", "Basic via app", "Basic via app"}},
	{"Reporting", []string{
		"Robust reporting", "Robust reporting", "Robust reporting", "Robust reporting",
		"Yes (via app/dashboard)", "Yes (via web dashboard)",
	}},
	{"Online Ordering Integration", []string{"Yes", "Yes", "Yes", "Yes", "No", "N/A"}},
	{"Appointment Management (Services)", []string{
		"N/A (More geared towards retail/restaurants)",
		"N/A (More geared towards retail/restaurants)",
		"Yes (for services)",
		"Yes (for services)",
		"No",
		"N/A (Invoicing focus)",
	}},
	{"Invoicing", []string{txOnly, txOnly, txOnly, txOnly, txOnly, "Yes"}},
	{"Recurring Payments", []string{txOnly, txOnly, txOnly, txOnly, txOnly, "Yes"}},
}
