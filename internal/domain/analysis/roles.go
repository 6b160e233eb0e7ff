package analysis

import (
	"errors"
	"strings"
)

var (
	ErrRoleRequired    = errors.New("target role is required")
	ErrUnsupportedRole = errors.New("target role is not supported")
)

var targetRoles = []string{
	"Frontend Developer",
	"Backend Developer",
	"Full Stack Developer",
	"Data Scientist",
	"Machine Learning Engineer",
	"DevOps Engineer",
	"Mobile Developer",
	"UI/UX Designer",
	"Product Manager",
	"Cloud Architect",
}

// TargetRoles lists the roles the Analysis Service accepts, in display order.
func TargetRoles() []string {
	roles := make([]string, len(targetRoles))
	copy(roles, targetRoles)
	return roles
}

func ValidateTargetRole(role string) error {
	if strings.TrimSpace(role) == "" {
		return ErrRoleRequired
	}
	for _, r := range targetRoles {
		if r == role {
			return nil
		}
	}
	return ErrUnsupportedRole
}
