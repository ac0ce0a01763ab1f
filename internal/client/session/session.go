package session

import "pong/internal/client/api"

// Session holds the mutable state of one interactive client run
type Session struct {
	APIBaseURL string
	AuthToken  string
	Client     *api.Client
	Verbose    bool
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}

func (s *Session) GetAuthToken() string { return s.AuthToken }

func (s *Session) SetAuthToken(token string) {
	s.AuthToken = token
	s.Client.SetToken(token)
}

func (s *Session) GetClient() interface{} { return s.Client }

func (s *Session) IsVerbose() bool { return s.Verbose }
