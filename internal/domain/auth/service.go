package auth

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("unknown role")
	ErrDisabled           = errors.New("authentication is disabled")
)

// Account is a configured login. PasswordHash is a bcrypt hash.
type Account struct {
	Username     string
	PasswordHash string
	Role         string
}

type Service struct {
	secret   string
	ttl      time.Duration
	accounts map[string]Account
}

// NewService keeps accounts with a username and a hash; others are ignored.
func NewService(secret string, ttl time.Duration, accounts ...Account) *Service {
	s := &Service{secret: secret, ttl: ttl, accounts: map[string]Account{}}
	for _, account := range accounts {
		name := strings.ToLower(strings.TrimSpace(account.Username))
		if name == "" || strings.TrimSpace(account.PasswordHash) == "" || !ValidRole(account.Role) {
			continue
		}
		account.Username = name
		s.accounts[name] = account
	}
	return s
}

func (s *Service) Enabled() bool {
	return s != nil && s.secret != ""
}

type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Service) Login(username, password string) (Session, error) {
	if !s.Enabled() {
		return Session{}, ErrDisabled
	}
	account, ok := s.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	if err := CheckPassword(account.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	token, err := GenerateToken(s.secret, Claims{Username: account.Username, Role: account.Role}, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		Username:  account.Username,
		Role:      account.Role,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
	}, nil
}
