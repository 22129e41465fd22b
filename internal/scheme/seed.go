package scheme

import (
	"context"
	"time"

	"janseva/internal/eligibility"
	domain "janseva/pkg/domain"
)

// Required document kinds shared by the seeded schemes.
const (
	DocAadhaar     domain.DocumentKind = "Aadhaar Card"
	DocLandRecords domain.DocumentKind = "Land Records (Khatauni)"
	DocBankDetails domain.DocumentKind = "Bank Account Details"
	DocPhoto       domain.DocumentKind = "Passport Size Photo"
	DocIncomeCert  domain.DocumentKind = "Income Certificate"
	DocSECCListing domain.DocumentKind = "SECC 2011 Listing Proof"
)

// SeedCatalog loads the bootstrap scheme catalog into the store. Used for
// development and tests; production catalogs arrive through migration.
func SeedCatalog(ctx context.Context, store Store) error {
	for _, scheme := range Catalog() {
		if err := store.Upsert(ctx, scheme); err != nil {
			return err
		}
	}
	return nil
}

// Catalog returns the bootstrap schemes of the portal.
func Catalog() []*Scheme {
	return []*Scheme{
		{
			ID:          "pm-kisan",
			Name:        "PM Kisan Samman Nidhi",
			Description: "Direct income support of ₹6,000 per year to small and marginal farmers",
			Category:    "Agriculture",
			Benefits:    "₹2,000 per instalment, 3 times a year",
			Deadline:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			RequiredDocuments: []domain.DocumentKind{
				DocAadhaar, DocLandRecords, DocBankDetails, DocPhoto, DocIncomeCert,
			},
			Rules: []eligibility.Rule{
				{Name: "land_holding_within_limit", Fact: "land_holding_hectares", Op: eligibility.OpLte, Value: 2},
				{Name: "not_government_employee", Fact: "government_employee", Op: eligibility.OpNe, Value: true},
				{Name: "bank_account_linked", Fact: "bank_linked", Op: eligibility.OpEq, Value: true},
				{Name: "aadhaar_declared", Fact: "aadhaar", Op: eligibility.OpExists},
			},
		},
		{
			ID:          "ayushman-bharat",
			Name:        "Ayushman Bharat",
			Description: "Health insurance coverage up to ₹5 lakhs per family per year",
			Category:    "Healthcare",
			Benefits:    "Cashless treatment at empaneled hospitals",
			Deadline:    time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
			RequiredDocuments: []domain.DocumentKind{
				DocAadhaar, DocSECCListing, DocPhoto,
			},
			Rules: []eligibility.Rule{
				{Name: "secc_listed", Fact: "secc_listed", Op: eligibility.OpEq, Value: true},
				{Name: "aadhaar_declared", Fact: "aadhaar", Op: eligibility.OpExists},
			},
		},
		{
			ID:          "digital-india",
			Name:        "Digital India Initiative",
			Description: "Digital literacy and infrastructure development program",
			Category:    "Education",
			Benefits:    "Free digital literacy training, online services",
			Deadline:    time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			RequiredDocuments: []domain.DocumentKind{
				DocAadhaar, DocPhoto,
			},
			Rules: []eligibility.Rule{
				{Name: "aadhaar_declared", Fact: "aadhaar", Op: eligibility.OpExists},
			},
		},
		{
			ID:          "pm-awas-yojana",
			Name:        "Pradhan Mantri Awas Yojana",
			Description: "Affordable housing for economically weaker sections",
			Category:    "Housing",
			Benefits:    "Interest subsidy and direct assistance up to ₹2.67 lakh",
			Deadline:    time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
			RequiredDocuments: []domain.DocumentKind{
				DocAadhaar, DocBankDetails, DocIncomeCert, DocPhoto,
			},
			Rules: []eligibility.Rule{
				{Name: "income_within_limit", Fact: "annual_income", Op: eligibility.OpLte, Value: 300000},
				{Name: "category_eligible", Fact: "category", Op: eligibility.OpIn, Value: []any{"EWS", "LIG"}},
				{Name: "no_pucca_house", Fact: "owns_pucca_house", Op: eligibility.OpNe, Value: true},
			},
		},
		{
			ID:          "mudra-yojana",
			Name:        "Mudra Yojana",
			Description: "Micro-financing for small business enterprises",
			Category:    "Business",
			Benefits:    "Loans up to ₹10 lakh without collateral",
			Deadline:    time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			RequiredDocuments: []domain.DocumentKind{
				DocAadhaar, DocBankDetails, DocPhoto,
			},
			Rules: []eligibility.Rule{
				{Name: "enterprise_type_eligible", Fact: "enterprise_type", Op: eligibility.OpIn, Value: []any{"micro", "small"}},
				{Name: "not_corporate", Fact: "corporate", Op: eligibility.OpNe, Value: true},
				{Name: "bank_account_linked", Fact: "bank_linked", Op: eligibility.OpEq, Value: true},
			},
		},
	}
}
