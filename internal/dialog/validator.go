package dialog

import (
	"fmt"
	"strings"

	"complaintbot/internal/catalog"
)

const DefaultBrand = "MunicipalComplaint"

// Validator decides the next dialog action for a complaint turn.
// It only reads the catalog and the slots, so one instance serves all turns.
type Validator struct {
	catalog    *catalog.Catalog
	brand      string
	categories map[string]struct{}
	regions    map[string]struct{}
}

type ValidatorOption func(*Validator)

// WithBrand sets the product name used in the closing message.
func WithBrand(brand string) ValidatorOption {
	return func(v *Validator) {
		if brand != "" {
			v.brand = brand
		}
	}
}

// WithCategories overrides the known complaint category words.
func WithCategories(categories ...string) ValidatorOption {
	return func(v *Validator) {
		v.categories = set(categories)
	}
}

// WithRegions overrides the literals accepted for the Region slot.
func WithRegions(regions ...string) ValidatorOption {
	return func(v *Validator) {
		v.regions = set(regions)
	}
}

func NewValidator(c *catalog.Catalog, opts ...ValidatorOption) *Validator {
	v := &Validator{
		catalog:    c,
		brand:      DefaultBrand,
		categories: set(c.Categories()),
		regions:    set(c.Keys()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Decide returns exactly one action for the turn. Invalid or missing slots
// never produce an error, only a re-prompt.
func (v *Validator) Decide(turn Turn, slots SlotSet, flow string) Response {
	attrs := turn.SessionAttributes

	if turn.Source != SourceDialogCodeHook {
		msg := fmt.Sprintf("Great! Your %s complaint has been registered and will be attended to soon. Thanks for using %s!",
			slots.Value(SlotType), v.brand)
		return Close(attrs, FulfillmentFulfilled, PlainText(msg))
	}

	city := slots.Value(SlotCity)
	if city == "" || !v.catalog.Has(city) {
		keys := v.catalog.Keys()
		msg := fmt.Sprintf("Sorry, but we can only take complaints for %s. Which city is your complaint about?", joinChoices(keys))
		return ElicitSlot(attrs, flow, slots, SlotCity, PlainText(msg),
			GenericCard("Cities", "Supported cities", ToOptions(keys)))
	}

	kind := slots.Value(SlotType)
	types := v.catalog.ValidTypesFor(city)
	if kind == "" || !contains(v.categories, kind) || !containsString(types, kind) {
		if kind == "" {
			return ElicitSlot(attrs, flow, slots, SlotType, nil, nil)
		}

		msg := fmt.Sprintf("Sorry, but we don't handle %s complaints in %s. What type of complaint is it?", kind, city)
		return ElicitSlot(attrs, flow, slots, SlotType, PlainText(msg),
			GenericCard(city, "available complaint types", ToOptions(types)))
	}

	region := slots.Value(SlotRegion)
	if region == "" || !contains(v.regions, region) {
		return ElicitSlot(attrs, flow, slots, SlotRegion, nil, nil)
	}

	return Delegate(attrs, slots)
}

func set(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func contains(m map[string]struct{}, v string) bool {
	_, ok := m[v]
	return ok
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// joinChoices renders "a", "a or b", "a, b or c".
func joinChoices(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + " or " + values[len(values)-1]
}
