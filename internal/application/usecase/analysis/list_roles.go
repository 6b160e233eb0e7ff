package analysis

import "github.com/khoahotran/career-navigator/internal/domain/analysis"

type ListRolesUseCase struct{}

func NewListRolesUseCase() *ListRolesUseCase {
	return &ListRolesUseCase{}
}

func (uc *ListRolesUseCase) Execute() []string {
	return analysis.TargetRoles()
}
