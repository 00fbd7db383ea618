package mockbackend

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

const defaultListLimit = 9

func parsePaging(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultListLimit
	}
	return page, limit
}

func slicePage[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

func (s *Server) handleListUniversities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	uniType := q.Get("type")

	var matched []model.University
	for _, u := range s.store.Universities() {
		if uniType != "" && u.Type != uniType {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Location), search) {
			continue
		}
		matched = append(matched, u)
	}

	page, limit := parsePaging(r)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(matched),
		"results": slicePage(matched, page, limit),
	})
}

func (s *Server) handleGetUniversity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	for _, u := range s.store.Universities() {
		if u.ID == id {
			s.respondJSON(w, http.StatusOK, u)
			return
		}
	}
	s.respondError(w, http.StatusNotFound, "University not found")
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	if search == "" {
		search = strings.ToLower(q.Get("q"))
	}
	level := q.Get("level")
	language := q.Get("language")
	universityID, _ := strconv.ParseInt(q.Get("university"), 10, 64)

	var matched []model.Program
	for _, p := range s.store.Programs() {
		if level != "" && p.DegreeLevel != level {
			continue
		}
		if language != "" && !strings.EqualFold(p.Language, language) {
			continue
		}
		if universityID > 0 && p.UniversityID != universityID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		matched = append(matched, p)
	}

	page, limit := parsePaging(r)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(matched),
		"results": slicePage(matched, page, limit),
	})
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	for _, p := range s.store.Programs() {
		if p.ID == id {
			s.respondJSON(w, http.StatusOK, p)
			return
		}
	}
	s.respondError(w, http.StatusNotFound, "Program not found")
}

// handleGlobalSearch matches the term across both collections and
// reports the filter choices observed in the matches, so the client can
// build its filter widgets from live data.
func (s *Server) handleGlobalSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := strings.ToLower(strings.TrimSpace(q.Get("q")))
	location := q.Get("location")
	level := q.Get("degree_level")
	language := q.Get("language")
	tuitionMin, hasMin := parseOptionalInt(q.Get("tuition_min"))
	tuitionMax, hasMax := parseOptionalInt(q.Get("tuition_max"))

	universities := []model.University{}
	for _, u := range s.store.Universities() {
		if location != "" && u.Location != location {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Description), term) {
			continue
		}
		universities = append(universities, u)
	}

	programs := []model.Program{}
	for _, p := range s.store.Programs() {
		if level != "" && p.DegreeLevel != level {
			continue
		}
		if language != "" && !strings.EqualFold(p.Language, language) {
			continue
		}
		if hasMin && p.TuitionFees < tuitionMin {
			continue
		}
		if hasMax && p.TuitionFees > tuitionMax {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		programs = append(programs, p)
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"universities": universities,
		"programs":     programs,
		"metadata": map[string]any{
			"filters_available": availableFilters(universities, programs),
		},
	})
}

func availableFilters(universities []model.University, programs []model.Program) model.AvailableFilters {
	locationSet := map[string]bool{}
	for _, u := range universities {
		if u.Location != "" {
			locationSet[u.Location] = true
		}
	}
	locations := make([]string, 0, len(locationSet))
	for loc := range locationSet {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	levels := map[string]string{}
	languageSet := map[string]bool{}
	var tuition model.TuitionRange
	for _, p := range programs {
		if p.DegreeLevel != "" {
			levels[p.DegreeLevel] = strings.ToUpper(p.DegreeLevel[:1]) + p.DegreeLevel[1:]
		}
		if p.Language != "" {
			languageSet[p.Language] = true
		}
		fee := p.TuitionFees
		if tuition.Min == nil || fee < *tuition.Min {
			v := fee
			tuition.Min = &v
		}
		if tuition.Max == nil || fee > *tuition.Max {
			v := fee
			tuition.Max = &v
		}
	}
	languages := make([]string, 0, len(languageSet))
	for lang := range languageSet {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return model.AvailableFilters{
		Locations:    locations,
		DegreeLevels: levels,
		TuitionRange: tuition,
		Languages:    languages,
	}
}

func parseOptionalInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
