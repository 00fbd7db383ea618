//revive:disable-next-line:var-naming // shared domain package name used across the project
package model

// University is a catalog record. The sync core treats it as read-only
// and interprets nothing beyond the ID used for linking.
type University struct {
	ID                    int64        `json:"id"`
	Name                  string       `json:"name"`
	Location              string       `json:"location"`
	Type                  string       `json:"type,omitempty"`
	Description           string       `json:"description"`
	ImageURL              string       `json:"image_url,omitempty"`
	Website               string       `json:"website,omitempty"`
	Rating                float64      `json:"rating,omitempty"`
	StudentCount          string       `json:"student_count,omitempty"`
	ProgramCount          int          `json:"program_count,omitempty"`
	Specialties           []string     `json:"specialties,omitempty"`
	EmploymentRate        float64      `json:"employment_rate,omitempty"`
	AdmissionRequirements []string     `json:"admission_requirements,omitempty"`
	ContactInfo           *ContactInfo `json:"contact_info,omitempty"`
}

// ContactInfo is the contact block nested under a university.
type ContactInfo struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Program is a degree program offered by a university. The canonical
// tuition field is `tuition_fees`; the legacy singular spelling is not
// carried forward.
type Program struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	UniversityID        int64  `json:"university_id,omitempty"`
	UniversityName      string `json:"university_name"`
	DegreeLevel         string `json:"degree_level"`
	Duration            string `json:"duration,omitempty"`
	Language            string `json:"language,omitempty"`
	TuitionFees         int    `json:"tuition_fees,omitempty"`
	Credits             int    `json:"credits,omitempty"`
	Featured            bool   `json:"featured,omitempty"`
	StartDate           string `json:"start_date,omitempty"`
	ApplicationDeadline string `json:"application_deadline,omitempty"`
}
