package database

import (
	"reflect"
	"testing"
)

func TestStringArray_RoundTrip(t *testing.T) {
	orig := StringArray{"U1", "U2"}

	v, err := orig.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var got StringArray
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !reflect.DeepEqual(got, orig) {
		t.Errorf("round trip = %v, want %v", got, orig)
	}
}

func TestStringArray_Scan(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    StringArray
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"json bytes", []byte(`["a","b"]`), StringArray{"a", "b"}, false},
		{"json string", `["a"]`, StringArray{"a"}, false},
		{"empty", "", nil, false},
		{"bare value", "solo", StringArray{"solo"}, false},
		{"unsupported type", 7, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a StringArray
			err := a.Scan(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(a, tt.want) {
				t.Errorf("Scan(%v) = %v, want %v", tt.in, a, tt.want)
			}
		})
	}
}

func TestStringArray_NilValue(t *testing.T) {
	var a StringArray
	v, err := a.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != nil {
		t.Errorf("Value() = %v, want nil for a nil array", v)
	}
}
