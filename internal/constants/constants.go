package constants

// ContextKeyUser is the gin context key holding the authenticated account.
const ContextKeyUser = "currentUser"

const (
	MinPasswordLength       = 8
	GeneratedPasswordLength = 8
)

// Pagination bounds
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AllowedImageTypes are the mime types accepted for profile pictures.
var AllowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}
