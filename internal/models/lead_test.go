package models

import "testing"

func TestQualificationAttributes_OmitsEmptyFields(t *testing.T) {
	lead := Lead{
		Company: "Acme Corporation",
		Contact: "John Smith",
		Email:   "john@acme.com",
		Value:   "$45,000",
	}

	attrs := lead.QualificationAttributes()
	if attrs["company"] != "Acme Corporation" {
		t.Errorf("Expected company in attributes, got %v", attrs["company"])
	}
	if _, ok := attrs["industry"]; ok {
		t.Error("Expected empty industry to be omitted")
	}
	if _, ok := attrs["tags"]; ok {
		t.Error("Expected empty tags to be omitted")
	}
}

func TestQualificationAttributes_IncludesOptionalFields(t *testing.T) {
	lead := Lead{
		Company:   "Acme Corporation",
		Contact:   "John Smith",
		Email:     "john@acme.com",
		Value:     "$45,000",
		Industry:  "Technology",
		Employees: "500",
		Tags:      []string{"enterprise"},
	}

	attrs := lead.QualificationAttributes()
	if attrs["industry"] != "Technology" {
		t.Errorf("Expected industry, got %v", attrs["industry"])
	}
	if attrs["employees"] != "500" {
		t.Errorf("Expected employees, got %v", attrs["employees"])
	}
}

func TestTriggersQualification(t *testing.T) {
	prev := &Lead{
		Company:   "Acme Corporation",
		Industry:  "Technology",
		Employees: "500",
	}

	newCompany := "Acme Holdings"
	sameCompany := "Acme Corporation"
	newIndustry := "Fintech"
	sameIndustry := "Technology"
	newEmployees := "1200"
	notes := "updated notes"

	tests := []struct {
		name string
		req  UpdateLeadRequest
		want bool
	}{
		{"company changed", UpdateLeadRequest{Company: &newCompany}, true},
		{"company restated unchanged", UpdateLeadRequest{Company: &sameCompany}, false},
		{"industry changed", UpdateLeadRequest{Industry: &newIndustry}, true},
		{"industry restated unchanged", UpdateLeadRequest{Industry: &sameIndustry}, false},
		{"employees changed", UpdateLeadRequest{Employees: &newEmployees}, true},
		{"notes only", UpdateLeadRequest{Notes: &notes}, false},
		{"empty update", UpdateLeadRequest{}, false},
		{"one changed among restated", UpdateLeadRequest{Company: &sameCompany, Employees: &newEmployees}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.TriggersQualification(prev); got != tt.want {
				t.Errorf("TriggersQualification() = %v, want %v", got, tt.want)
			}
		})
	}
}
