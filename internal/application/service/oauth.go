package service

import "context"

type OAuthProfile struct {
	Subject string
	Email   string
	Name    string
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}
