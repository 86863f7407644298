package competency

// Level is one rung of an area's progression ladder.
type Level struct {
	// Number is the level position, 1 through the area's maximum.
	Number int `json:"number"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Requirements lists what a person must demonstrate at this level.
	Requirements []string `json:"requirements,omitempty"`
}

// Area is a named skill domain with discrete levels. Reference data: the
// engine reads the catalog but never mutates it.
type Area struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Levels      []Level `json:"levels"`
}

// MaxLevel returns the highest level number defined for the area.
func (a Area) MaxLevel() int {
	max := 0
	for _, l := range a.Levels {
		if l.Number > max {
			max = l.Number
		}
	}
	return max
}

// standardLevels builds the shared five-step ladder used by the default
// catalog.
func standardLevels() []Level {
	return []Level{
		{Number: 1, Title: "Novice", Description: "Aware of the basics, works under close guidance."},
		{Number: 2, Title: "Developing", Description: "Applies the fundamentals with occasional support."},
		{Number: 3, Title: "Proficient", Description: "Works autonomously in routine situations."},
		{Number: 4, Title: "Advanced", Description: "Handles complex situations and coaches others."},
		{Number: 5, Title: "Expert", Description: "Shapes practice and is a reference for the organization."},
	}
}

// DefaultCatalog returns the reference competency areas.
func DefaultCatalog() []Area {
	return []Area{
		{
			ID:          "leadership",
			Name:        "Leadership",
			Description: "Setting direction, delegating, and developing people.",
			Levels:      standardLevels(),
		},
		{
			ID:          "communication",
			Name:        "Communication",
			Description: "Listening, presenting, and adapting the message to the audience.",
			Levels:      standardLevels(),
		},
		{
			ID:          "teamwork",
			Name:        "Teamwork",
			Description: "Collaborating, resolving conflict, and sharing knowledge.",
			Levels:      standardLevels(),
		},
		{
			ID:          "problem-solving",
			Name:        "Problem Solving",
			Description: "Analyzing situations, weighing options, and deciding under constraints.",
			Levels:      standardLevels(),
		},
		{
			ID:          "technical",
			Name:        "Technical Mastery",
			Description: "Depth and currency in the core technical discipline.",
			Levels:      standardLevels(),
		},
	}
}

// FindArea looks up an area by ID in catalog.
func FindArea(catalog []Area, id string) (Area, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

// AreaForCategory maps a question category tag to a catalog area ID.
// Categories use area IDs directly; unknown categories map to nothing and
// are skipped by the persistence gateway.
func AreaForCategory(catalog []Area, category string) (string, bool) {
	if _, ok := FindArea(catalog, category); ok {
		return category, true
	}
	return "", false
}
