package validate

import "testing"

type createForm struct {
	Name    string  `json:"name" validate:"required,min=2,max=100"`
	GroupID *string `json:"group_id" validate:"omitempty,uuid"`
	Price   int     `json:"price" validate:"required,min=1,max=10000"`
}

func TestStruct(t *testing.T) {
	good := createForm{Name: "Ali", Price: 5}
	if err := Struct(good); err != nil {
		t.Fatalf("Struct(valid) = %v", err)
	}

	tests := []struct {
		name string
		in   createForm
		want string
	}{
		{
			name: "missing required",
			in:   createForm{Price: 5},
			want: "name failed on required",
		},
		{
			name: "too short",
			in:   createForm{Name: "A", Price: 5},
			want: "name failed on min=2",
		},
		{
			name: "over the cap",
			in:   createForm{Name: "Ali", Price: 20000},
			want: "price failed on max=10000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if err == nil {
				t.Fatal("Struct() = nil, want error")
			}
			if err.Error() != tt.want {
				t.Fatalf("Struct() = %q, want %q", err.Error(), tt.want)
			}
		})
	}

	bad := "not-a-uuid"
	if err := Struct(createForm{Name: "Ali", GroupID: &bad, Price: 5}); err == nil {
		t.Fatal("Struct(bad uuid) = nil, want error")
	} else if err.Error() != "group_id failed on uuid" {
		t.Fatalf("Struct(bad uuid) = %q", err.Error())
	}
}
