package domain

// AvailableCategories returns the distinct category names in first-seen order.
func AvailableCategories(records []SalesRecord) []string {
	return distinct(records, func(r SalesRecord) string { return r.Category })
}

// FilterByCategory returns the records whose category matches exactly.
func FilterByCategory(records []SalesRecord, category string) []SalesRecord {
	return filter(records, func(r SalesRecord) bool { return r.Category == category })
}

// AvailableBrands returns the distinct item descriptions in first-seen order.
// Call it on a category subset to get the brands sold within that category.
func AvailableBrands(records []SalesRecord) []string {
	return distinct(records, func(r SalesRecord) string { return r.Brand })
}

// FilterByBrand returns the records whose item description matches exactly.
func FilterByBrand(records []SalesRecord, brand string) []SalesRecord {
	return filter(records, func(r SalesRecord) bool { return r.Brand == brand })
}

func distinct(records []SalesRecord, key func(SalesRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func filter(records []SalesRecord, keep func(SalesRecord) bool) []SalesRecord {
	out := make([]SalesRecord, 0)
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
