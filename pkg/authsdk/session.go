package authsdk

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Session is an authenticated connection to the service. It holds the token
// pair and refreshes the access token shortly before it expires.
type Session struct {
	client *SDKClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(c *SDKClient, tokens TokenResponse) *Session {
	expiresAt := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	expiresAt = expiresAt.Add(-30 * time.Second) // refresh buffer

	return &Session{
		client:       c,
		accessToken:  tokens.AccessToken,
		refreshToken: tokens.RefreshToken,
		expiresAt:    expiresAt,
	}
}

// AccessToken returns the current access token without refreshing it.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// getValidToken returns the access token, refreshing the pair first when it
// is within the expiry buffer.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	tokens, err := s.client.RefreshGrant(ctx, s.refreshToken)
	if err != nil {
		return "", err
	}

	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.expiresAt = time.Now().
		Add(time.Duration(tokens.ExpiresIn) * time.Second).
		Add(-30 * time.Second)

	return s.accessToken, nil
}

// Me fetches the authenticated principal's profile.
func (s *Session) Me(ctx context.Context) (*UserInfoResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var out UserInfoResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyMembership submits a membership application for the caller's company.
func (s *Session) ApplyMembership(ctx context.Context, tier string) (*MembershipApplication, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/memberships/applications", MembershipApplyRequest{
		Tier: tier,
	})
	if err != nil {
		return nil, err
	}

	var out MembershipApplication
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMembershipApplications lists applications, optionally filtered by
// status. Admin only.
func (s *Session) ListMembershipApplications(ctx context.Context, status string) ([]MembershipApplication, error) {
	path := "/v1/memberships/applications"
	if status != "" {
		path += "?status=" + status
	}
	resp, err := s.doAuthJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out MembershipListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Applications, nil
}

// DecideMembershipApplication approves or rejects a pending application.
// Admin only.
func (s *Session) DecideMembershipApplication(ctx context.Context, id, decision string) (*MembershipApplication, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost,
		"/v1/memberships/applications/"+id+"/decision",
		MembershipDecisionRequest{Decision: decision},
	)
	if err != nil {
		return nil, err
	}

	var out MembershipApplication
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitRFQResponse submits a quote against an RFQ. Supplier or admin only.
func (s *Session) SubmitRFQResponse(ctx context.Context, req RFQResponseRequest) (*RFQResponseAck, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/rfq/responses", req)
	if err != nil {
		return nil, err
	}

	var out RFQResponseAck
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
