package run

// LanguageTable maps judge engine language ids to display names. The
// coordinator rejects runs whose language id is not in the table.
type LanguageTable struct {
	byID map[int]string
}

// NewLanguageTable builds a table from an id -> name map.
func NewLanguageTable(langs map[int]string) *LanguageTable {
	byID := make(map[int]string, len(langs))
	for id, name := range langs {
		byID[id] = name
	}
	return &LanguageTable{byID: byID}
}

// DefaultLanguages returns the engine's stock runtime table.
func DefaultLanguages() *LanguageTable {
	return NewLanguageTable(map[int]string{
		50: "C (GCC 9.2.0)",
		54: "C++ (GCC 9.2.0)",
		62: "Java (OpenJDK 13.0.1)",
		63: "JavaScript (Node.js 12.14.0)",
		71: "Python (3.8.1)",
	})
}

// Known reports whether the language id is registered.
func (t *LanguageTable) Known(id int) bool {
	_, ok := t.byID[id]
	return ok
}

// Name returns the display name for a language id, or "" if unknown.
func (t *LanguageTable) Name(id int) string {
	return t.byID[id]
}
