package driver

const (
	PingQuery = `RETURN 1 AS ok`

	SearchConditionsQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) CONTAINS toLower($fragment)
		RETURN c.name AS name
		ORDER BY c.name
		LIMIT $limit
	`

	ListConditionsQuery = `
		MATCH (c:Condition)
		RETURN c.name AS name
		ORDER BY c.name
		LIMIT $limit
	`

	ResolveConditionQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		RETURN c.name AS name
		ORDER BY c.name
	`

	// Category queries read from a single condition node, the one
	// ResolveConditionQuery lists first, so case-variant nodes never merge.
	ImpairmentsQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		WITH c ORDER BY c.name LIMIT 1
		MATCH (c)-[:HAS_IMPAIRMENT]->(n:Impairment)
		RETURN properties(n) AS props
	`

	AssessmentsQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		WITH c ORDER BY c.name LIMIT 1
		MATCH (c)-[:ASSESSED_BY]->(n:Assessment)
		RETURN properties(n) AS props
	`

	InterventionsQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		WITH c ORDER BY c.name LIMIT 1
		MATCH (c)-[:TREATED_WITH]->(n:Intervention)
		RETURN properties(n) AS props
	`

	ExercisesQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		WITH c ORDER BY c.name LIMIT 1
		MATCH (c)-[:PRESCRIBES_EXERCISE]->(n:Exercise)
		RETURN properties(n) AS props
	`

	RedFlagsQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		WITH c ORDER BY c.name LIMIT 1
		MATCH (c)-[:HAS_RED_FLAG]->(n:RedFlag)
		RETURN properties(n) AS props
	`

	MedicationsQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		WITH c ORDER BY c.name LIMIT 1
		MATCH (c)-[:MANAGED_WITH]->(n:Medication)
		RETURN properties(n) AS props
	`

	OutcomeMeasuresQuery = `
		MATCH (c:Condition)
		WHERE toLower(c.name) = toLower($condition)
		WITH c ORDER BY c.name LIMIT 1
		MATCH (c)-[:MEASURED_BY]->(n:OutcomeMeasure)
		RETURN properties(n) AS props
	`
)

var queryNames = map[string]string{
	PingQuery:             "ping",
	SearchConditionsQuery: "search_conditions",
	ListConditionsQuery:   "list_conditions",
	ResolveConditionQuery: "resolve_condition",
	ImpairmentsQuery:      "impairments",
	AssessmentsQuery:      "assessments",
	InterventionsQuery:    "interventions",
	ExercisesQuery:        "exercises",
	RedFlagsQuery:         "red_flags",
	MedicationsQuery:      "medications",
	OutcomeMeasuresQuery:  "outcome_measures",
}

// QueryName returns a stable label for a catalogued query, or "other".
func QueryName(query string) string {
	if name, ok := queryNames[query]; ok {
		return name
	}
	return "other"
}
