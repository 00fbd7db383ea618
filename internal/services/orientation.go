package services

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

const (
	recommendationCount = 3
	matchFloor          = 70
	matchSpread         = 30 // scores land in [70, 99]
)

// ProgramLister is the slice of ProgramService the orientation flow
// needs; kept narrow so tests can stub it.
type ProgramLister interface {
	List(ctx context.Context, p ListParams) (model.Page[model.Program], error)
}

// OrientationService turns questionnaire answers into program
// recommendations. The scoring is a placeholder sampling over the live
// catalog, not a real recommender: results vary run to run and callers
// must not assume repeatability.
type OrientationService struct {
	programs ProgramLister
	logger   *slog.Logger
}

// NewOrientationService constructs an OrientationService.
func NewOrientationService(programs ProgramLister, logger *slog.Logger) *OrientationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrientationService{programs: programs, logger: logger}
}

// SubmitAnswers produces a recommendation from the answer set.
// Completeness of the answers is a UI-level gate, not validated here.
func (s *OrientationService) SubmitAnswers(ctx context.Context, answers []model.Answer) (model.Recommendation, error) {
	page, err := s.programs.List(ctx, ListParams{Limit: 50})
	if err != nil {
		s.logger.ErrorContext(ctx, "orientation program fetch failed", "error", err)
		return model.Recommendation{}, err
	}

	s.logger.InfoContext(ctx, "orientation answers submitted", "answers", len(answers))

	picked := samplePrograms(page.Data, recommendationCount)
	recs := make([]model.RecommendedProgram, 0, len(picked))
	for _, p := range picked {
		recs = append(recs, model.RecommendedProgram{
			ID:              p.ID,
			Name:            p.Name,
			UniversityName:  fallback(p.UniversityName, "Université"),
			Level:           fallback(p.DegreeLevel, "Master"),
			Field:           fallback(p.DegreeLevel, "Informatique"),
			MatchPercentage: matchFloor + rand.Intn(matchSpread),
		})
	}

	return model.Recommendation{
		RecommendedFields:   []string{"Informatique", "Sciences", "Ingénierie", "Gestion"},
		RecommendedPrograms: recs,
	}, nil
}

// Questions returns the fixed orientation questionnaire.
func (s *OrientationService) Questions() []model.Question {
	return []model.Question{
		{
			ID:       1,
			Question: "Quel domaine vous intéresse le plus ?",
			Type:     "single_choice",
			Options:  []string{"Sciences et technologies", "Commerce et gestion", "Arts et lettres", "Santé", "Sciences sociales"},
		},
		{
			ID:       2,
			Question: "Quelle est votre matière préférée ?",
			Type:     "single_choice",
			Options:  []string{"Mathématiques", "Langues", "Sciences naturelles", "Histoire/Géographie", "Économie"},
		},
		{
			ID:       3,
			Question: "Comment préférez-vous apprendre ?",
			Type:     "single_choice",
			Options:  []string{"Cours théoriques", "Travaux pratiques", "Projets de groupe", "Recherche individuelle", "Stage en entreprise"},
		},
		{
			ID:       4,
			Question: "Quel environnement de travail préférez-vous ?",
			Type:     "single_choice",
			Options:  []string{"Bureau", "Laboratoire", "Extérieur", "Hôpital/Clinique", "Salle de classe"},
		},
		{
			ID:       5,
			Question: "Quelle compétence souhaitez-vous développer en priorité ?",
			Type:     "single_choice",
			Options:  []string{"Analyse et résolution de problèmes", "Communication", "Créativité", "Leadership", "Compétences techniques"},
		},
	}
}

func samplePrograms(programs []model.Program, n int) []model.Program {
	if len(programs) <= n {
		return programs
	}
	out := make([]model.Program, 0, n)
	for _, i := range rand.Perm(len(programs))[:n] {
		out = append(out, programs[i])
	}
	return out
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
