package model

type Candidate struct {
	ID                 string   `json:"id"`
	FullName           string   `json:"fullName"`
	Mobile             string   `json:"mobile"`
	Email              string   `json:"email"`
	DegreeName         string   `json:"degreeName"`
	PCNumber           string   `json:"pcNumber,omitempty"`
	Initials           string   `json:"initials,omitempty"`
	UniversityName     string   `json:"universityName"`
	EnrollmentOrRollNo string   `json:"enrollmentOrRollNo,omitempty"`
	GraduationYear     *int     `json:"graduationYear,omitempty"`
	DocumentURLs       []string `json:"documentUrls"`
}
