package model

// PatientIntake mirrors the intake form fields. Everything except the
// name is optional; the summary is composed from whatever was filled in.
type PatientIntake struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`

	MainSymptoms    string `json:"main_symptoms"`
	SymptomTriggers string `json:"symptom_triggers"`
	SymptomRelief   string `json:"symptom_relief"`

	PastIllnesses      string `json:"past_illnesses"`
	CurrentMedications string `json:"current_medications"`
	FamilyHistory      string `json:"family_history"`
	Allergies          string `json:"allergies"`

	Diet        string `json:"diet"`
	Sleep       string `json:"sleep"`
	Exercise    string `json:"exercise"`
	Environment string `json:"environment"`

	EmotionalState string `json:"emotional_state"`
	Stressors      string `json:"stressors"`
	MentalSymptoms string `json:"mental_symptoms"`

	Temperature     string `json:"temperature"`
	FoodPreferences string `json:"food_preferences"`
	TimeOfDay       string `json:"time_of_day"`

	DoctorObservations string `json:"doctor_observations"`
	SuspectedOrgan     string `json:"suspected_organ"`
	RelatedBodyParts   string `json:"related_body_parts"`
	DiagnosisNotes     string `json:"diagnosis_notes"`
	PrescribedRemedy   string `json:"prescribed_remedy"`

	Summary string `json:"summary"`
	Ctime   int64  `json:"ctime"`
}
