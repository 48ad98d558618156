package internal

import (
	"fmt"
	"strings"
)

// Selection maps a slot key to the garden codes included in analysis.
// A missing key means the slot has not been filtered yet and includes every garden;
// a present but empty list excludes the slot's requirements entirely.
type Selection map[string][]string

// Gardens returns the codes selected for a slot and whether a filter exists
func (s Selection) Gardens(slot Slot) ([]string, bool) {
	codes, ok := s[slot.Key()]
	return codes, ok
}

// Set replaces the filter of a slot. A nil or empty list is stored as an empty filter.
func (s Selection) Set(slot Slot, codes []string) {
	if codes == nil {
		codes = []string{}
	}
	s[slot.Key()] = codes
}

// WithDefaults returns a copy where every dataset without a filter includes all its gardens
func (s Selection) WithDefaults(datasets []Dataset) Selection {
	out := make(Selection, len(s)+len(datasets))
	for k, v := range s {
		out[k] = v
	}
	for _, ds := range datasets {
		if _, ok := out[ds.Slot.Key()]; !ok {
			out[ds.Slot.Key()] = ds.GardenCodes()
		}
	}
	return out
}

// Includes reports whether requirements of garden code in slot are part of the analysis
func (s Selection) Includes(slot Slot, code string) bool {
	codes, ok := s.Gardens(slot)
	if !ok {
		return true
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// Requirements combines the requirements of all datasets that pass the selection
func (s Selection) Requirements(datasets []Dataset) []Requirement {
	var out []Requirement
	for _, ds := range datasets {
		codes, ok := s.Gardens(ds.Slot)
		if ok && len(codes) == 0 {
			continue
		}
		for _, req := range ds.Requirements {
			if s.Includes(ds.Slot, req.GardenCode) {
				out = append(out, req)
			}
		}
	}
	return out
}

// ParseSelectionArg parses "contract:line=CODE1,CODE2". An empty code list
// ("contract:line=") excludes the slot.
func ParseSelectionArg(arg string) (Slot, []string, error) {
	slotStr, codesStr, ok := strings.Cut(arg, "=")
	if !ok {
		return Slot{}, nil, fmt.Errorf("invalid selection %q: expected contract:line=CODE,...", arg)
	}
	slot, err := ParseSlot(slotStr)
	if err != nil {
		return Slot{}, nil, err
	}
	codes := []string{}
	for _, c := range strings.Split(codesStr, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			codes = append(codes, c)
		}
	}
	return slot, codes, nil
}
