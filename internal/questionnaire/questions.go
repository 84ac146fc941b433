// Package questionnaire runs the home repair intake survey over SMS.
//
// Each sender moves through the questions one message at a time. The first
// question asks for consent; every later answer is validated before the next
// prompt is sent. Completed submissions go to a ResponseSink, which can export
// them as CSV for the analysis pipeline.
package questionnaire

import (
	"slices"
	"strconv"
	"strings"
)

// Question is one prompt and the rule its answer must satisfy.
type Question struct {
	Prompt string
	Column string
	rule   func(string) bool
}

var cities = []string{
	"Alhambra", "Altadena", "Arcadia", "Atwater", "Azusa",
	"Baldwin Park", "Bradbury", "Duarte", "Eagle Rock",
	"El Monte", "South El Monte", "Glendale", "El Sereno",
	"Highland Park", "Irwindale", "La Canada", "La Crescenta",
	"Monrovia", "Lincoln Heights", "Monterey Hills",
	"Monterey Park", "Montrose", "Pasadena", "South Pasadena",
	"Rosemead", "San Gabriel", "San Marino", "Sierra Madre",
	"Sunland", "Temple City", "Tujunga", "Other",
}

var householdSizes = []string{"1", "2", "3", "4", "5", "More Than 5"}

// Income brackets are matched exactly, including the published
// "$77,770 - $88,800" label.
var incomeBrackets = []string{
	"Less than $66,000",
	"$66,000 - $77,700",
	"$77,770 - $88,800",
	"$88,800 - $99,900",
	"$99,900 - $110,950",
	"$110,950 - $119,850",
	"More than $119,850",
}

// Questions is the survey in the order it is asked.
var Questions = []Question{
	{"Do you consent to participate in this survey? (Yes/No)", "consent", yesNo},
	{"Please provide your full name:", "full_name", nonEmpty},
	{"Street Address:", "street_address", nonEmpty},
	{"Unit/Apt. #:", "unit", nonEmpty},
	{"City (e.g., Alhambra, Altadena, ...):", "city", oneOf(cities)},
	{"Best Phone Number:", "phone", phone},
	{"Email Address:", "email", email},
	{"How did you hear about our program?", "referral", nonEmpty},
	{"Are you the only person on the title? (Yes/No)", "sole_title_holder", yesNo},
	{"What year did you purchase your home?", "purchase_year", purchaseYear},
	{"Has your home ever been retrofitted? (Yes/No)", "retrofitted", yesNo},
	{"How many people live in your home? (1-5, More Than 5)", "household_size", oneOf(householdSizes)},
	{"Approximate annual household income?", "household_income", oneOf(incomeBrackets)},
	{"Are you currently unemployed? (Yes/No)", "unemployed", yesNo},
	{"Is there someone else in your household who will be acting as the main point of contact? (Yes/No)", "has_contact", yesNo},
	{"If yes, please list that contact person’s full name and relationship to you.", "contact_name", nonEmpty},
	{"Contact's best phone number:", "contact_phone", phone},
	{"Contact's email address:", "contact_email", email},
	{"Please share any additional information about your repair request or situation you feel would be relevant.", "additional_info", anything},
}

// Columns returns the CSV header names for the questions.
func Columns() []string {
	cols := make([]string, len(Questions))
	for i, q := range Questions {
		cols[i] = q.Column
	}
	return cols
}

// Validate reports whether answer is acceptable for question index.
// Out of range indexes are never valid.
func Validate(index int, answer string) bool {
	if index < 0 || index >= len(Questions) {
		return false
	}
	return Questions[index].rule(answer)
}

func yesNo(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "no"
}

func nonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

func anything(string) bool { return true }

func oneOf(options []string) func(string) bool {
	return func(s string) bool {
		return slices.Contains(options, s)
	}
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func phone(s string) bool {
	return digits(s) && len(s) >= 10
}

func email(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

func purchaseYear(s string) bool {
	if !digits(s) {
		return false
	}
	year, err := strconv.Atoi(s)
	return err == nil && year >= 1900 && year <= 2100
}
