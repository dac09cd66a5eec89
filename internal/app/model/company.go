package model

const DefaultSLADays = 5

type Company struct {
	ID                    string `json:"id"`
	CompanyName           string `json:"companyName"`
	Email                 string `json:"email"`
	Website               string `json:"website,omitempty"`
	CompanyCertificateURL string `json:"companyCertificateUrl,omitempty"`
	ContactNumber         string `json:"contactNumber"`
	Address               string `json:"address"`
	BrandLogo             string `json:"brandLogo,omitempty"`
	SLADays               int    `json:"slaDays"`
}

// CompanyAccount is the persisted company record: the public profile plus its
// login secret. Only the profile is ever rendered.
type CompanyAccount struct {
	Company
	PasswordHash string `json:"passwordHash,omitempty"`
}
