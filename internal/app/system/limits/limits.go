// internal/app/system/limits/limits.go
package limits

// Request body size limits. Bodies over the limit are rejected before
// decoding.
const (
	// MaxJSONBody caps REST request bodies.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxCommentBody caps comment bodies, which may carry HTML.
	MaxCommentBody = 256 << 10 // 256 KB
)
