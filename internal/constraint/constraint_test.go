package constraint

import "testing"

func TestEqual_IgnoresNameWhenAsked(t *testing.T) {
	a := Def{Name: "a", Type: Func, Func: FuncDef{ID: 1}}
	b := Def{Name: "b", Type: Func, Func: FuncDef{ID: 1}}
	if a.Equal(b, false) {
		t.Fatal("expected mismatch when comparing names")
	}
	if !a.Equal(b, true) {
		t.Fatal("expected match when ignoring names")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		def     Def
		wantErr bool
	}{
		{"func ok", Def{Name: "c", Type: Func}, false},
		{"fkey by id ok", Def{Name: "c", Type: FKey, FKey: FKeyDef{Field: FieldRef{ID: 3}}}, false},
		{"fkey by name ok", Def{Name: "c", Type: FKey, FKey: FKeyDef{Field: FieldRef{Name: "f"}}}, false},
		{"fkey missing field", Def{Name: "c", Type: FKey}, true},
		{"missing name", Def{Type: Func}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.def)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate(%+v) = %v, wantErr=%v", tc.def, err, tc.wantErr)
			}
		})
	}
}
