package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homeolab/homeoagent/internal/model"
	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

func TestComposeSummary_SkipsEmptySections(t *testing.T) {
	intake := &model.PatientIntake{
		FullName:     "Jane Roe",
		MainSymptoms: "recurring headaches",
	}
	summary := ComposeSummary(intake)
	require.Contains(t, summary, "PATIENT: Jane Roe")
	require.Contains(t, summary, "CHIEF COMPLAINTS:\nrecurring headaches")
	require.NotContains(t, summary, "MEDICAL HISTORY")
	require.NotContains(t, summary, "LIFESTYLE FACTORS")
	require.NotContains(t, summary, "DOCTOR'S ASSESSMENT")
}

func TestComposeSummary_AllSectionsInOrder(t *testing.T) {
	intake := &model.PatientIntake{
		FullName:           "Jane Roe",
		Age:                "41",
		Gender:             "female",
		MainSymptoms:       "insomnia",
		SymptomTriggers:    "stress",
		SymptomRelief:      "rest",
		PastIllnesses:      "none",
		Diet:               "vegetarian",
		EmotionalState:     "anxious",
		Temperature:        "prefers warmth",
		TimeOfDay:          "evening",
		DoctorObservations: "restless",
	}
	summary := ComposeSummary(intake)

	sections := []string{
		"PATIENT: Jane Roe",
		"CHIEF COMPLAINTS",
		"SYMPTOM TRIGGERS",
		"SYMPTOM RELIEF FACTORS",
		"MEDICAL HISTORY",
		"LIFESTYLE FACTORS",
		"MENTAL/EMOTIONAL STATE",
		"CONSTITUTIONAL FACTORS",
		"DOCTOR'S ASSESSMENT",
	}
	lastIndex := -1
	for _, section := range sections {
		index := strings.Index(summary, section)
		require.GreaterOrEqual(t, index, 0, "missing section %s", section)
		require.Greater(t, index, lastIndex, "section %s out of order", section)
		lastIndex = index
	}
	require.Contains(t, summary, "Symptom Pattern: Worse during evening")
}

func TestSubmit_RequiresName(t *testing.T) {
	svc := NewIntakeService(nil, nil)
	_, err := svc.Submit(context.Background(), &model.PatientIntake{FullName: "  "}, false)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestSubmit_AssignsIDAndSummary(t *testing.T) {
	svc := NewIntakeService(nil, nil)
	intake, err := svc.Submit(context.Background(), &model.PatientIntake{
		FullName:     "Jane Roe",
		MainSymptoms: "fatigue",
	}, true) // polish requested but no generator configured
	require.NoError(t, err)
	require.NotEmpty(t, intake.ID)
	require.NotZero(t, intake.Ctime)
	require.Contains(t, intake.Summary, "fatigue")
}
