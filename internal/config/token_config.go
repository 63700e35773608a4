package config

import "time"

type TokenConfig interface {
	GetAuthHeaderKeyword() string
	GetAuthTokenType() string
	GetAuthTokenAge() time.Duration
	GetAuthRefreshTokenType() string
	GetAuthRefreshTokenAge() time.Duration
	GetSignupTokenType() string
	GetSignupTokenAge() time.Duration
	GetPasswdTokenType() string
	GetPasswdTokenAge() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAuthHeaderKeyword() string {
	return GetEnv("AUTH_HEADER_KEYWORD", "Bearer")
}

func (Tokens) GetAuthTokenType() string {
	return GetEnv("AUTH_TOKEN_TYPE", "auth")
}

func (Tokens) GetAuthTokenAge() time.Duration {
	return GetEnvSeconds("AUTH_TOKEN_AGE", 316224000) // 10 years
}

func (Tokens) GetAuthRefreshTokenType() string {
	return GetEnv("AUTH_REFRESH_TOKEN_TYPE", "auth_refresh")
}

func (Tokens) GetAuthRefreshTokenAge() time.Duration {
	return GetEnvSeconds("AUTH_REFRESH_TOKEN_AGE", 316224000)
}

func (Tokens) GetSignupTokenType() string {
	return GetEnv("SIGNUP_TOKEN_TYPE", "signup")
}

func (Tokens) GetSignupTokenAge() time.Duration {
	return GetEnvSeconds("SIGNUP_TOKEN_AGE", 3600)
}

func (Tokens) GetPasswdTokenType() string {
	return GetEnv("PASSWD_TOKEN_TYPE", "passwd")
}

func (Tokens) GetPasswdTokenAge() time.Duration {
	return GetEnvSeconds("PASSWD_TOKEN_AGE", 3600)
}
