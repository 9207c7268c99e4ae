// Package prompt renders the natural-language instructions sent to the model.
// Every renderer is a pure function of its input record.
package prompt

import "fmt"

// MaxReportChars is how much extracted document text a report prompt carries.
const MaxReportChars = 3000

// Vitals is a validated vitals reading.
type Vitals struct {
	Age         int
	Gender      string
	BPSystolic  int
	BPDiastolic int
	Sugar       int
	HeartRate   int
}

// Treatment describes a diagnosed patient.
type Treatment struct {
	Diagnosis string
	Symptoms  string
	Age       int
}

// Medicine describes a patient asking for over-the-counter suggestions.
type Medicine struct {
	Symptoms  string
	Age       int
	Allergies string
}

func ForVitals(v Vitals) string {
	return fmt.Sprintf(
		"Analyze these vitals for a %d year old %s: BP %d/%d, Sugar %d, HR %d. Is this normal? Output strict short advice.",
		v.Age, v.Gender, v.BPSystolic, v.BPDiastolic, v.Sugar, v.HeartRate,
	)
}

func ForTreatment(t Treatment) string {
	return fmt.Sprintf(
		"Suggest a standard treatment plan for Diagnosis: %s with Symptoms: %s for a %d year old patient. Include medicines and advice.",
		t.Diagnosis, t.Symptoms, t.Age,
	)
}

func ForMedicine(m Medicine) string {
	return fmt.Sprintf(
		"Suggest safe OTC medicines for a %d year old patient with symptoms: %s. Patient allergies: %s. List only safe medicines and dosage.",
		m.Age, m.Symptoms, m.Allergies,
	)
}

// ForReport asks for a three-bullet summary of the extracted document text.
// Only the first MaxReportChars characters of text are used.
func ForReport(text string) string {
	return "Summarize this medical report in 3 simple bullet points for a doctor:\n\n" + Truncate(text, MaxReportChars)
}

// Truncate returns the first n characters (runes) of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
