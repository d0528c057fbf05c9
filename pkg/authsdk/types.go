package authsdk

// ============================================================================
// Error Response Types
// ============================================================================

// ErrorResponse is the JSON body of every error the service returns.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`

	// Fields contains field-specific validation errors (field name: reason)
	Fields map[string]string `json:"fields,omitempty"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is returned by the login and refresh endpoints.
type TokenResponse struct {
	// AccessToken is the JWT session token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT refresh token used to obtain new session tokens
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// LoginRequest carries the credentials for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries the refresh token for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ============================================================================
// Registration Types
// ============================================================================

// RegisterRequest creates a buyer or supplier account, optionally creating
// the company it belongs to in the same call.
type RegisterRequest struct {
	// Email is the login identifier (unique, case-insensitive)
	Email string `json:"email"`

	// Password must be at least 8 characters with a letter and a digit
	Password string `json:"password"`

	// Name is the display name of the person registering
	Name string `json:"name"`

	// Role must be "buyer" or "supplier"; admin and publisher accounts
	// cannot self-register
	Role string `json:"role"`

	// CompanyName, when set, creates a company owned by this account
	CompanyName string `json:"company_name,omitempty"`

	// CompanyCountry is the ISO country code of the company
	CompanyCountry string `json:"company_country,omitempty"`
}

// RegisterResponse contains the identifiers of the created records.
type RegisterResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

// ============================================================================
// Password Reset Types
// ============================================================================

// PasswordResetRequest starts the reset flow for an email address.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm completes the reset flow with the emailed token.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// AcceptedResponse acknowledges a request that is processed asynchronously.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// ============================================================================
// Profile Types
// ============================================================================

// UserInfoResponse is the authenticated principal's profile.
type UserInfoResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

// ============================================================================
// Membership Types
// ============================================================================

// MembershipApplyRequest asks for a paid membership tier for the caller's
// company.
type MembershipApplyRequest struct {
	// Tier is one of "basic", "silver", "gold"
	Tier string `json:"tier"`
}

// MembershipApplication is one application as seen by administrators.
type MembershipApplication struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Tier      string `json:"tier"`
	Status    string `json:"status"`
	DecidedBy string `json:"decided_by,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// MembershipListResponse wraps the application listing.
type MembershipListResponse struct {
	Applications []MembershipApplication `json:"applications"`
}

// MembershipDecisionRequest approves or rejects a pending application.
type MembershipDecisionRequest struct {
	// Decision is "approved" or "rejected"
	Decision string `json:"decision"`
}

// ============================================================================
// RFQ Types
// ============================================================================

// RFQResponseRequest submits a supplier quote against an open RFQ.
type RFQResponseRequest struct {
	RFQID        string `json:"rfq_id"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
	LeadTimeDays int    `json:"lead_time_days"`
	Notes        string `json:"notes,omitempty"`
}

// RFQResponseAck acknowledges a received quote.
type RFQResponseAck struct {
	ID         string `json:"id"`
	RFQID      string `json:"rfq_id"`
	SupplierID string `json:"supplier_id"`
	Status     string `json:"status"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
