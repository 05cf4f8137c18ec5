package storefrontsdk

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// Accounts
// ============================================================================

// SignupRequest is the body of POST /v1/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the body of POST /v1/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequestResetRequest is the body of POST /v1/request-reset.
type RequestResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of POST /v1/reset-password.
type ResetPasswordRequest struct {
	ResetToken      string `json:"resetToken"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UpdatePermissionsRequest is the body of PUT /v1/users/{id}/permissions.
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// BootstrapRequest is the body of POST /v1/bootstrap.
type BootstrapRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user. Password hashes and reset
// tokens are never serialized.
type UserResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListUsersResponse is returned by GET /v1/users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// MessageResponse carries a human-readable acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Items
// ============================================================================

// ItemRequest is the body of POST /v1/items. Price is in cents.
type ItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	LargeImage  string `json:"largeImage,omitempty"`
}

// ItemUpdateRequest is the body of PATCH /v1/items/{id}. Omitted fields are
// left unchanged.
type ItemUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Image       *string `json:"image,omitempty"`
	LargeImage  *string `json:"largeImage,omitempty"`
}

// ItemResponse is the public view of an item.
type ItemResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          int64     `json:"price"`
	PriceFormatted string    `json:"priceFormatted"`
	Image          string    `json:"image,omitempty"`
	LargeImage     string    `json:"largeImage,omitempty"`
	OwnerID        string    `json:"ownerId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ListItemsResponse is returned by GET /v1/items.
type ListItemsResponse struct {
	Items  []ItemResponse `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ImageUploadRequest is the body of POST /v1/items/images.
type ImageUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// ImageUploadResponse tells the client where to PUT the image bytes and which
// URLs to store on the item afterwards.
type ImageUploadResponse struct {
	UploadURL  string            `json:"uploadUrl"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers,omitempty"`
	Key        string            `json:"key"`
	Image      string            `json:"image"`
	LargeImage string            `json:"largeImage"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// FormatPrice renders an amount in cents as a fixed two-decimal string.
func FormatPrice(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
