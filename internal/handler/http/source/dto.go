// Package source provides HTTP handlers for inspecting the configured
// source catalog.
package source

type DTO struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Transport string `json:"transport"`
	Dialect   string `json:"dialect,omitempty"`
	RoleType  string `json:"role_type"`
	Active    bool   `json:"active"`
}
