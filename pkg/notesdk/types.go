package notesdk

// AckResponse acknowledges an operation with no payload.
type AckResponse struct {
	Status string `json:"status"` // always "ok"
}

// IdentityResponse is returned by register, reset-password and session
// refresh. The session token also travels in the HTTP-only cookie; it
// is echoed here for clients that prefer header transport.
type IdentityResponse struct {
	UUID         string `json:"uuid"`
	Email        string `json:"email"`
	SessionToken string `json:"session_token,omitempty"`
}

// LoginResponse extends IdentityResponse with the recovered plaintext
// secret the client feeds into its local document-key derivation.
type LoginResponse struct {
	UUID         string `json:"uuid"`
	Email        string `json:"email"`
	Secret       string `json:"secret"`
	SessionToken string `json:"session_token,omitempty"`
}

// DirectoryResponse describes the storage directory bound to an account.
type DirectoryResponse struct {
	DirectoryPath  string `json:"directory_path"`
	LastAccessTime string `json:"last_access_time"` // RFC 3339
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
