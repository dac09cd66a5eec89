package model

type UserRole string // 사용자 권한 타입

const (
	RoleEmployer UserRole = "EMPLOYER" // 검증 요청 회사 담당자
	RoleVerifier UserRole = "VERIFIER" // 학력 검증 담당자
)

func (r UserRole) Valid() bool {
	return r == RoleEmployer || r == RoleVerifier
}

type User struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"companyId"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
}

// Session is the signed-in user together with a snapshot of their company
type Session struct {
	User    User    `json:"user"`
	Company Company `json:"company"`
}
