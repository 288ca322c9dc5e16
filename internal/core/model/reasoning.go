package model

// Optional free-text attributes are pointers: nil means the graph node has no
// such property, which is different from an empty value.

type Impairment struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity,omitempty"`
	Evidence *string  `json:"evidence,omitempty"`
}

type Assessment struct {
	Name     string   `json:"name"`
	Type     *string  `json:"type,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

type Intervention struct {
	Name     string  `json:"name"`
	Category *string `json:"category,omitempty"`
	// Evidence is the evidence grade, e.g. "Grade A".
	Evidence *string `json:"evidence,omitempty"`
}

type Exercise struct {
	Name   string  `json:"name"`
	Phase  Phase   `json:"phase,omitempty"`
	Dosage *string `json:"dosage,omitempty"`
}

type RedFlag struct {
	Flag    string  `json:"flag"`
	Action  *string `json:"action,omitempty"`
	Urgency Urgency `json:"urgency"`
}

type Medication struct {
	Name       string  `json:"name"`
	Indication *string `json:"indication,omitempty"`
	Caution    *string `json:"caution,omitempty"`
}

type OutcomeMeasure struct {
	Name      string  `json:"name"`
	Type      *string `json:"type,omitempty"`
	Frequency *string `json:"frequency,omitempty"`
}

// ReasoningRecord is the knowledge bundle for one condition. An empty slice
// means nothing of that category is linked to the condition.
type ReasoningRecord struct {
	Condition       string           `json:"condition"`
	Impairments     []Impairment     `json:"impairments"`
	Assessments     []Assessment     `json:"assessments"`
	Interventions   []Intervention   `json:"interventions"`
	Exercises       []Exercise       `json:"exercises"`
	RedFlags        []RedFlag        `json:"redFlags"`
	Medications     []Medication     `json:"medications"`
	OutcomeMeasures []OutcomeMeasure `json:"outcomeMeasures"`
}

