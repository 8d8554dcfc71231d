package models

// PriceMap holds the nine fare fields of a schedule. A nil field is
// "undefined" and produces no price row; an explicit 0 is a valid fare.
type PriceMap struct {
	LocalAdult    *float64 `json:"localAdult"`
	LocalChild    *float64 `json:"localChild"`
	LocalInfant   *float64 `json:"localInfant"`
	ExpatAdult    *float64 `json:"expatAdult"`
	ExpatChild    *float64 `json:"expatChild"`
	ExpatInfant   *float64 `json:"expatInfant"`
	TouristAdult  *float64 `json:"touristAdult"`
	TouristChild  *float64 `json:"touristChild"`
	TouristInfant *float64 `json:"touristInfant"`
}

// FareMeta is the (currency, category, type) triple a fare field maps to.
type FareMeta struct {
	Currency int64
	Category int64
	Type     int64
}

// FareItem is one defined fare field together with its taxonomy triple.
type FareItem struct {
	Field string
	Meta  FareMeta
	Value float64
}

// fareFields is the fixed fare taxonomy: residency (local/expat/tourist)
// times age band (adult/child/infant). Locals and expats pay in rufiyaa
// (currency 1), tourists in USD (currency 2). The order here is the
// order price rows are written in.
var fareFields = []struct {
	name string
	get  func(PriceMap) *float64
	meta FareMeta
}{
	{"localAdult", func(p PriceMap) *float64 { return p.LocalAdult }, FareMeta{1, 1, 1}},
	{"localChild", func(p PriceMap) *float64 { return p.LocalChild }, FareMeta{1, 1, 2}},
	{"localInfant", func(p PriceMap) *float64 { return p.LocalInfant }, FareMeta{1, 1, 3}},
	{"expatAdult", func(p PriceMap) *float64 { return p.ExpatAdult }, FareMeta{1, 2, 1}},
	{"expatChild", func(p PriceMap) *float64 { return p.ExpatChild }, FareMeta{1, 2, 2}},
	{"expatInfant", func(p PriceMap) *float64 { return p.ExpatInfant }, FareMeta{1, 2, 3}},
	{"touristAdult", func(p PriceMap) *float64 { return p.TouristAdult }, FareMeta{2, 3, 1}},
	{"touristChild", func(p PriceMap) *float64 { return p.TouristChild }, FareMeta{2, 3, 2}},
	{"touristInfant", func(p PriceMap) *float64 { return p.TouristInfant }, FareMeta{2, 3, 3}},
}

// Items returns the defined fare fields in taxonomy order.
func (p PriceMap) Items() []FareItem {
	items := make([]FareItem, 0, len(fareFields))
	for _, f := range fareFields {
		if v := f.get(p); v != nil {
			items = append(items, FareItem{Field: f.name, Meta: f.meta, Value: *v})
		}
	}
	return items
}

// Merge overlays the defined fields of o on top of p.
func (p PriceMap) Merge(o PriceMap) PriceMap {
	out := p
	if o.LocalAdult != nil {
		out.LocalAdult = o.LocalAdult
	}
	if o.LocalChild != nil {
		out.LocalChild = o.LocalChild
	}
	if o.LocalInfant != nil {
		out.LocalInfant = o.LocalInfant
	}
	if o.ExpatAdult != nil {
		out.ExpatAdult = o.ExpatAdult
	}
	if o.ExpatChild != nil {
		out.ExpatChild = o.ExpatChild
	}
	if o.ExpatInfant != nil {
		out.ExpatInfant = o.ExpatInfant
	}
	if o.TouristAdult != nil {
		out.TouristAdult = o.TouristAdult
	}
	if o.TouristChild != nil {
		out.TouristChild = o.TouristChild
	}
	if o.TouristInfant != nil {
		out.TouristInfant = o.TouristInfant
	}
	return out
}
