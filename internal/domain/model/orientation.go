//revive:disable-next-line:var-naming // shared domain package name used across the project
package model

// Answer pairs one questionnaire question with the selected option.
type Answer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// Question is one entry of the orientation questionnaire.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
}

// RecommendedProgram is one program suggestion with its match score.
type RecommendedProgram struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	UniversityName  string `json:"university_name"`
	Level           string `json:"level,omitempty"`
	Field           string `json:"field,omitempty"`
	MatchPercentage int    `json:"match_percentage"`
}

// Recommendation is the outcome of an orientation test submission.
// Recommendations are not repeatable run to run.
type Recommendation struct {
	RecommendedFields   []string             `json:"recommended_fields"`
	RecommendedPrograms []RecommendedProgram `json:"recommended_programs"`
}
