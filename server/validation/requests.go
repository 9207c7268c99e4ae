package validation

import (
	"encoding/json"
	"reflect"

	"github.com/teilomillet/aiengine/server/prompt"
)

// DefaultAllergies is used when a medicine request omits allergies.
const DefaultAllergies = "None"

// Pointer fields distinguish "absent" from zero values, so `age: 0` is
// accepted while a missing age is rejected.

// VitalsRequest is the body of POST /analyze-vitals.
type VitalsRequest struct {
	Age         *int    `json:"age" validate:"required"`
	Gender      *string `json:"gender" validate:"required"`
	BPSystolic  *int    `json:"bp_systolic" validate:"required"`
	BPDiastolic *int    `json:"bp_diastolic" validate:"required"`
	Sugar       *int    `json:"sugar" validate:"required"`
	HeartRate   *int    `json:"heart_rate" validate:"required"`
}

// Record converts a validated request into the renderer's input.
func (r *VitalsRequest) Record() prompt.Vitals {
	return prompt.Vitals{
		Age:         *r.Age,
		Gender:      *r.Gender,
		BPSystolic:  *r.BPSystolic,
		BPDiastolic: *r.BPDiastolic,
		Sugar:       *r.Sugar,
		HeartRate:   *r.HeartRate,
	}
}

// TreatmentRequest is the body of POST /generate-treatment.
type TreatmentRequest struct {
	Diagnosis *string `json:"diagnosis" validate:"required"`
	Symptoms  *string `json:"symptoms" validate:"required"`
	Age       *int    `json:"age" validate:"required"`
}

// Record converts a validated request into the renderer's input.
func (r *TreatmentRequest) Record() prompt.Treatment {
	return prompt.Treatment{
		Diagnosis: *r.Diagnosis,
		Symptoms:  *r.Symptoms,
		Age:       *r.Age,
	}
}

// MedicineRequest is the body of POST /suggest-medicines.
type MedicineRequest struct {
	Symptoms  *string `json:"symptoms" validate:"required"`
	Age       *int    `json:"age" validate:"required"`
	Allergies OptionalString `json:"allergies"`
}

// OptionalString is a string field that may be omitted but, when present,
// must be a JSON string. An explicit null is a type error.
type OptionalString struct {
	Value string
	Set   bool
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return &json.UnmarshalTypeError{Value: "null", Type: reflect.TypeOf("")}
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// Or returns the value when set, otherwise def.
func (o OptionalString) Or(def string) string {
	if o.Set {
		return o.Value
	}
	return def
}

// Record converts a validated request into the renderer's input, applying
// the allergies default.
func (r *MedicineRequest) Record() prompt.Medicine {
	return prompt.Medicine{
		Symptoms:  *r.Symptoms,
		Age:       *r.Age,
		Allergies: r.Allergies.Or(DefaultAllergies),
	}
}
