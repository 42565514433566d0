package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/homeolab/homeoagent/internal/ai"
	"github.com/homeolab/homeoagent/internal/model"
	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
	"github.com/homeolab/homeoagent/internal/repo"
)

var ErrAIUnavailable = ai.ErrUnavailable

type IntakeService struct {
	intakes *repo.IntakeRepo
	manager *ai.Manager
}

func NewIntakeService(intakes *repo.IntakeRepo, manager *ai.Manager) *IntakeService {
	return &IntakeService{intakes: intakes, manager: manager}
}

// Submit composes the summary, optionally polishes it through the
// generator, and persists the intake. A polish failure falls back to the
// plain summary rather than failing the submission.
func (s *IntakeService) Submit(ctx context.Context, intake *model.PatientIntake, polish bool) (*model.PatientIntake, error) {
	if strings.TrimSpace(intake.FullName) == "" {
		return nil, appErr.ErrInvalid
	}
	intake.ID = newID()
	intake.Ctime = time.Now().Unix()
	intake.Summary = ComposeSummary(intake)
	if polish && s.manager != nil {
		polished, err := s.manager.PolishSummary(ctx, intake.Summary)
		switch {
		case err == nil:
			intake.Summary = polished
		case errors.Is(err, ai.ErrUnavailable):
			logutil.GetLogger(ctx).Debug("summary polish skipped, no generator configured")
		default:
			logutil.GetLogger(ctx).Warn("summary polish failed, keeping plain summary", zap.Error(err))
		}
	}
	if s.intakes != nil {
		if err := s.intakes.Save(ctx, intake); err != nil {
			return nil, err
		}
	}
	return intake, nil
}

func (s *IntakeService) Get(ctx context.Context, id string) (*model.PatientIntake, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErr.ErrInvalid
	}
	return s.intakes.Get(ctx, id)
}

func (s *IntakeService) List(ctx context.Context, limit int) ([]*model.PatientIntake, error) {
	return s.intakes.List(ctx, limit)
}

// ComposeSummary renders the populated intake sections in a fixed order,
// skipping sections with no content.
func ComposeSummary(intake *model.PatientIntake) string {
	var parts []string

	parts = append(parts, "PATIENT: "+intake.FullName)
	if intake.Age != "" {
		parts = append(parts, "Age: "+intake.Age)
	}
	if intake.Gender != "" {
		parts = append(parts, "Gender: "+intake.Gender)
	}

	if intake.MainSymptoms != "" {
		parts = append(parts, "\nCHIEF COMPLAINTS:\n"+intake.MainSymptoms)
	}
	if intake.SymptomTriggers != "" {
		parts = append(parts, "\nSYMPTOM TRIGGERS:\n"+intake.SymptomTriggers)
	}
	if intake.SymptomRelief != "" {
		parts = append(parts, "\nSYMPTOM RELIEF FACTORS:\n"+intake.SymptomRelief)
	}

	if section := composeSection("MEDICAL HISTORY", []entry{
		{"Past Illnesses", intake.PastIllnesses},
		{"Current Medications", intake.CurrentMedications},
		{"Family History", intake.FamilyHistory},
		{"Allergies", intake.Allergies},
	}); section != "" {
		parts = append(parts, section)
	}
	if section := composeSection("LIFESTYLE FACTORS", []entry{
		{"Diet", intake.Diet},
		{"Sleep", intake.Sleep},
		{"Exercise", intake.Exercise},
		{"Environment", intake.Environment},
	}); section != "" {
		parts = append(parts, section)
	}
	if section := composeSection("MENTAL/EMOTIONAL STATE", []entry{
		{"Emotional State", intake.EmotionalState},
		{"Stressors", intake.Stressors},
		{"Mental Symptoms", intake.MentalSymptoms},
	}); section != "" {
		parts = append(parts, section)
	}

	constitutional := []entry{
		{"Temperature Preference", intake.Temperature},
		{"Food Preferences", intake.FoodPreferences},
	}
	if intake.TimeOfDay != "" {
		constitutional = append(constitutional, entry{"Symptom Pattern", "Worse during " + intake.TimeOfDay})
	}
	if section := composeSection("CONSTITUTIONAL FACTORS", constitutional); section != "" {
		parts = append(parts, section)
	}

	if section := composeSection("DOCTOR'S ASSESSMENT", []entry{
		{"Observations", intake.DoctorObservations},
		{"Suspected System", intake.SuspectedOrgan},
		{"Affected Areas", intake.RelatedBodyParts},
		{"Diagnosis Notes", intake.DiagnosisNotes},
		{"Prescribed Remedy", intake.PrescribedRemedy},
	}); section != "" {
		parts = append(parts, section)
	}

	return strings.Join(parts, "\n")
}

type entry struct {
	label string
	value string
}

func composeSection(title string, entries []entry) string {
	var lines []string
	for _, item := range entries {
		if strings.TrimSpace(item.value) == "" {
			continue
		}
		lines = append(lines, item.label+": "+item.value)
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n" + title + ":\n" + strings.Join(lines, "\n")
}
