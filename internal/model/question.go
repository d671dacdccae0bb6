package model

// QuestionOptionCount is the fixed number of options on every question.
const QuestionOptionCount = 4

// Question represents a single question-bank entry. Questions are immutable
// once fetched; sessions snapshot them and reference them by ID.
type Question struct {
	ID             string   `json:"id"`
	Prompt         string   `json:"question"`
	Options        []string `json:"options"`
	CorrectOption  int      `json:"answer"` // 1-based index into Options
	Subject        string   `json:"subject"`
	Subtopic       string   `json:"subtopic"`
	Module         string   `json:"module"`
	Source         string   `json:"source"`
	Difficulty     string   `json:"difficulty"`
	CognitiveSkill string   `json:"cognitive_skill"`
	Keywords       string   `json:"keywords,omitempty"`
	ImageURL       string   `json:"question_image,omitempty"`
	Explanation    string   `json:"explanation"`
}

// HasImage reports whether the question carries an image reference.
func (q Question) HasImage() bool {
	return q.ImageURL != ""
}

// QuestionFilters narrows a question-bank fetch. A zero field means
// "no filter on this dimension". GrandTest bypasses all narrowing and
// pulls from the supplier-curated pool.
type QuestionFilters struct {
	Subject        string   `json:"subject"`
	Modules        []string `json:"modules"`
	Subtopics      []string `json:"subtopics"`
	Difficulty     string   `json:"difficulty"`
	CognitiveSkill string   `json:"cognitive_skill"`
	Sources        []string `json:"sources"`
	Count          int      `json:"count"`
	GrandTest      bool     `json:"is_grand_test"`
}
