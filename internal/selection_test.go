package internal

import (
	"errors"
	"reflect"
	"testing"
)

func gardenDataset(slot Slot, codes ...string) Dataset {
	ds := Dataset{Slot: slot}
	for i, code := range codes {
		ds.Gardens = append(ds.Gardens, Garden{Code: code, Name: "Jardín " + code})
		r := newReq(i+1, "2024-01-01", "2024-02-01")
		r.GardenCode = code
		ds.Requirements = append(ds.Requirements, r)
	}
	return ds
}

func TestSelection_Requirements(t *testing.T) {
	slotA := Slot{Contract: ContractMaintenance, Line: Line1}
	slotB := Slot{Contract: ContractHeating, Line: Line1}
	datasets := []Dataset{
		gardenDataset(slotA, "A1", "A2", "A3"),
		gardenDataset(slotB, "B1", "B2"),
	}

	tests := []struct {
		name     string
		sel      Selection
		expected []string
	}{
		{"missing keys include everything", Selection{}, []string{"A1", "A2", "A3", "B1", "B2"}},
		{"subset of one slot", Selection{slotA.Key(): {"A2"}}, []string{"A2", "B1", "B2"}},
		{"empty list excludes the slot", Selection{slotB.Key(): {}}, []string{"A1", "A2", "A3"}},
		{"unknown codes match nothing", Selection{slotA.Key(): {"ZZ"}, slotB.Key(): {"B2"}}, []string{"B2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range tt.sel.Requirements(datasets) {
				got = append(got, r.GardenCode)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Requirements() gardens = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSelection_WithDefaults(t *testing.T) {
	slotA := Slot{Contract: ContractMaintenance, Line: Line2}
	slotB := Slot{Contract: ContractGreenArea, Line: Line2}
	datasets := []Dataset{gardenDataset(slotA, "A1", "A2"), gardenDataset(slotB, "B1")}

	sel := Selection{}
	sel.Set(slotB, nil)
	full := sel.WithDefaults(datasets)

	if codes, _ := full.Gardens(slotA); !reflect.DeepEqual(codes, []string{"A1", "A2"}) {
		t.Errorf("defaulted slot = %v, want [A1 A2]", codes)
	}
	if codes, ok := full.Gardens(slotB); !ok || len(codes) != 0 {
		t.Errorf("explicit empty filter should be kept, got %v (present %v)", codes, ok)
	}
	if _, ok := sel.Gardens(slotA); ok {
		t.Error("WithDefaults must not modify the receiver")
	}
}

func TestParseSelectionArg(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		slot      Slot
		codes     []string
		wantErr   error
		wantError bool
	}{
		{
			name:  "codes",
			input: "mantencion:linea_1=J-01, J-02",
			slot:  Slot{Contract: ContractMaintenance, Line: Line1},
			codes: []string{"J-01", "J-02"},
		},
		{
			name:  "short line and empty list",
			input: "area_verde:3=",
			slot:  Slot{Contract: ContractGreenArea, Line: Line3},
			codes: []string{},
		},
		{
			name:    "elevators outside line 1",
			input:   "ascensores:linea_2=J-01",
			wantErr: ErrInvalidSlot,
		},
		{
			name:      "missing equals sign",
			input:     "mantencion:linea_1",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, codes, err := ParseSelectionArg(tt.input)
			if tt.wantErr != nil || tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got slot %v", slot)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if slot != tt.slot {
				t.Errorf("slot = %v, want %v", slot, tt.slot)
			}
			if !reflect.DeepEqual(codes, tt.codes) {
				t.Errorf("codes = %v, want %v", codes, tt.codes)
			}
		})
	}
}

func TestSlot_Validate(t *testing.T) {
	for _, slot := range AllSlots() {
		if err := slot.Validate(); err != nil {
			t.Errorf("AllSlots returned invalid slot %v: %v", slot, err)
		}
		if slot.Contract == ContractElevators && slot.Line != Line1 {
			t.Errorf("elevators slot on %s", slot.Line)
		}
	}
	if got := len(AllSlots()); got != 16 {
		t.Errorf("AllSlots() = %d slots, want 16", got)
	}

	if err := (Slot{Contract: "jardineria", Line: Line1}).Validate(); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot for unknown contract, got %v", err)
	}
	if err := (Slot{Contract: ContractElevators, Line: Line5}).Validate(); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot for elevators on line 5, got %v", err)
	}
}

func TestParseStatusSet(t *testing.T) {
	set, err := ParseStatusSet([]string{"paid,overdue", " in_progress "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := set.Sorted(); !reflect.DeepEqual(got, []Status{StatusPaid, StatusOverdue, StatusInProgress}) {
		t.Errorf("Sorted() = %v", got)
	}

	all, _ := ParseStatusSet([]string{"all"})
	if len(all.Sorted()) != len(AllStatuses) {
		t.Errorf("all = %v", all.Sorted())
	}
	none, _ := ParseStatusSet([]string{"none"})
	if len(none.Sorted()) != 0 {
		t.Errorf("none = %v", none.Sorted())
	}

	if _, err := ParseStatusSet([]string{"pagado"}); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}
