//revive:disable-next-line:var-naming // shared domain package name used across the project
package model

import "time"

// Role values returned by the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the canonical user record. The backend historically served
// several divergent shapes (`name` vs `first_name`/`last_name`,
// camelCase saved lists); this is the richer variant and the only one
// the sync core speaks.
type User struct {
	ID                int64        `json:"id"`
	Username          string       `json:"username"`
	Email             string       `json:"email"`
	FirstName         string       `json:"first_name"`
	LastName          string       `json:"last_name"`
	Role              string       `json:"role"`
	Profile           *Profile     `json:"profile,omitempty"`
	SavedPrograms     []int64      `json:"saved_programs,omitempty"`
	SavedUniversities []int64      `json:"saved_universities,omitempty"`
	TestResults       []TestResult `json:"test_results,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Profile holds the contact/academic sub-object nested under User.
// Server responses may echo only a subset of these fields; the
// reconciliation engine is responsible for never losing the rest.
type Profile struct {
	Phone              string           `json:"phone,omitempty"`
	Address            string           `json:"address,omitempty"`
	Bio                string           `json:"bio,omitempty"`
	AvatarURL          string           `json:"avatar_url,omitempty"`
	Interests          []string         `json:"interests,omitempty"`
	EducationLevel     string           `json:"education_level,omitempty"`
	CurrentInstitution string           `json:"current_university,omitempty"`
	AcademicRecords    []AcademicRecord `json:"academic_records,omitempty"`
	TranscriptFiles    []TranscriptFile `json:"transcript_files,omitempty"`
}

// AcademicRecord is one semester of results attached to a profile.
type AcademicRecord struct {
	Year     string   `json:"year"`
	Semester string   `json:"semester"`
	GPA      float64  `json:"gpa"`
	Courses  []Course `json:"courses,omitempty"`
}

// Course is a single graded course inside an academic record.
type Course struct {
	Name    string `json:"name"`
	Grade   string `json:"grade"`
	Credits int    `json:"credits"`
}

// TranscriptFile describes an uploaded transcript document. The URL is
// the identity key; the upload endpoint does not return a numeric id.
type TranscriptFile struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TestResult is one stored orientation test outcome.
type TestResult struct {
	Date              string               `json:"date"`
	RecommendedFields []string             `json:"recommended_fields"`
	RecommendedItems  []RecommendedProgram `json:"recommended_programs"`
}

// ProfilePatch carries only the changed fields of a profile update.
// Pointer and omitempty semantics keep untouched fields off the wire so
// the backend's partial echo stays partial.
type ProfilePatch struct {
	FirstName *string             `json:"first_name,omitempty"`
	LastName  *string             `json:"last_name,omitempty"`
	Profile   *ProfileFieldsPatch `json:"profile,omitempty"`

	// Saved lists are pointers so that an emptied list still goes out
	// on the wire instead of being dropped by omitempty.
	SavedPrograms     *[]int64 `json:"saved_programs,omitempty"`
	SavedUniversities *[]int64 `json:"saved_universities,omitempty"`
}

// ProfileFieldsPatch is the nested profile sub-object of a patch.
type ProfileFieldsPatch struct {
	Phone              *string          `json:"phone,omitempty"`
	Address            *string          `json:"address,omitempty"`
	Bio                *string          `json:"bio,omitempty"`
	Interests          []string         `json:"interests,omitempty"`
	EducationLevel     *string          `json:"education_level,omitempty"`
	CurrentInstitution *string          `json:"current_university,omitempty"`
	AcademicRecords    []AcademicRecord `json:"academic_records,omitempty"`
}
