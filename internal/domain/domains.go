package domain

import "time"

// ============================================================
// CDN domain records (management only — no proxying here)
// ============================================================

// Domain is a customer domain record.
type Domain struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Hostname   string    `json:"hostname"`
	OriginURL  string    `json:"origin_url"`
	SSLEnabled bool      `json:"ssl_enabled"`
	Status     string    `json:"status"` // active, paused, pending
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// CreateDomainRequest is the body for POST /v1/domains.
type CreateDomainRequest struct {
	Hostname   string `json:"hostname"`
	OriginURL  string `json:"originUrl"`
	SSLEnabled bool   `json:"sslEnabled"`
}

// UpdateDomainRequest is the body for PUT /v1/domains/{id}.
// Pointer fields distinguish "not sent" from zero values.
type UpdateDomainRequest struct {
	OriginURL  *string `json:"originUrl,omitempty"`
	SSLEnabled *bool   `json:"sslEnabled,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// DomainListFilter narrows a domain listing.
type DomainListFilter struct {
	Status string
	Search string
}

// DomainList is a paginated domain listing.
type DomainList struct {
	Items    []Domain `json:"items"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	Total    int      `json:"total"`
}
