package category

import (
	"cmp"
	"strings"

	"github.com/agenthands/physiokg/internal/core/model"
	"github.com/agenthands/physiokg/internal/driver"
)

var Impairments = Descriptor[model.Impairment]{
	Name:  "impairment",
	Query: driver.ImpairmentsQuery,
	Decode: func(f *Fields) (model.Impairment, error) {
		name, err := f.Required("name")
		if err != nil {
			return model.Impairment{}, err
		}
		return model.Impairment{
			Name:     name,
			Severity: Ordinal(f, "severity", model.ParseSeverity),
			Evidence: f.Optional("evidence"),
		}, nil
	},
	Compare: func(a, b model.Impairment) int {
		return strings.Compare(a.Name, b.Name)
	},
}

var Assessments = Descriptor[model.Assessment]{
	Name:  "assessment",
	Query: driver.AssessmentsQuery,
	Decode: func(f *Fields) (model.Assessment, error) {
		name, err := f.Required("name")
		if err != nil {
			return model.Assessment{}, err
		}
		return model.Assessment{
			Name:     name,
			Type:     f.Optional("type"),
			Priority: Ordinal(f, "priority", model.ParsePriority),
		}, nil
	},
	// High, Medium, Low, then unset
	Compare: func(a, b model.Assessment) int {
		return cmp.Or(
			cmp.Compare(a.Priority.Rank(), b.Priority.Rank()),
			strings.Compare(a.Name, b.Name),
		)
	},
}

var Interventions = Descriptor[model.Intervention]{
	Name:  "intervention",
	Query: driver.InterventionsQuery,
	Decode: func(f *Fields) (model.Intervention, error) {
		name, err := f.Required("name")
		if err != nil {
			return model.Intervention{}, err
		}
		return model.Intervention{
			Name:     name,
			Category: f.Optional("category"),
			Evidence: f.Optional("evidence"),
		}, nil
	},
	Compare: func(a, b model.Intervention) int {
		return strings.Compare(a.Name, b.Name)
	},
}

var Exercises = Descriptor[model.Exercise]{
	Name:  "exercise",
	Query: driver.ExercisesQuery,
	Decode: func(f *Fields) (model.Exercise, error) {
		name, err := f.Required("name")
		if err != nil {
			return model.Exercise{}, err
		}
		return model.Exercise{
			Name:   name,
			Phase:  Ordinal(f, "phase", model.ParsePhase),
			Dosage: f.Optional("dosage"),
		}, nil
	},
	// Early, Mid, Late, then unset
	Compare: func(a, b model.Exercise) int {
		return cmp.Or(
			cmp.Compare(a.Phase.Rank(), b.Phase.Rank()),
			strings.Compare(a.Name, b.Name),
		)
	},
}

// RedFlags require an urgency; a flag without a recognised one cannot be
// placed and is skipped.
var RedFlags = Descriptor[model.RedFlag]{
	Name:  "red_flag",
	Query: driver.RedFlagsQuery,
	Decode: func(f *Fields) (model.RedFlag, error) {
		flag, err := f.Required("flag")
		if err != nil {
			return model.RedFlag{}, err
		}
		raw, err := f.Required("urgency")
		if err != nil {
			return model.RedFlag{}, err
		}
		urgency, err := model.ParseUrgency(raw)
		if err != nil {
			return model.RedFlag{}, err
		}
		return model.RedFlag{
			Flag:    flag,
			Action:  f.Optional("action"),
			Urgency: urgency,
		}, nil
	},
	Compare: func(a, b model.RedFlag) int {
		return cmp.Or(
			cmp.Compare(a.Urgency.Rank(), b.Urgency.Rank()),
			strings.Compare(a.Flag, b.Flag),
		)
	},
}

var Medications = Descriptor[model.Medication]{
	Name:  "medication",
	Query: driver.MedicationsQuery,
	Decode: func(f *Fields) (model.Medication, error) {
		name, err := f.Required("name")
		if err != nil {
			return model.Medication{}, err
		}
		return model.Medication{
			Name:       name,
			Indication: f.Optional("indication"),
			Caution:    f.Optional("caution"),
		}, nil
	},
	Compare: func(a, b model.Medication) int {
		return strings.Compare(a.Name, b.Name)
	},
}

var OutcomeMeasures = Descriptor[model.OutcomeMeasure]{
	Name:  "outcome_measure",
	Query: driver.OutcomeMeasuresQuery,
	Decode: func(f *Fields) (model.OutcomeMeasure, error) {
		name, err := f.Required("name")
		if err != nil {
			return model.OutcomeMeasure{}, err
		}
		return model.OutcomeMeasure{
			Name:      name,
			Type:      f.Optional("type"),
			Frequency: f.Optional("frequency"),
		}, nil
	},
	Compare: func(a, b model.OutcomeMeasure) int {
		return strings.Compare(a.Name, b.Name)
	},
}
