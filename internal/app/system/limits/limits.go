// internal/app/system/limits/limits.go
package limits

// Request body and field limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxNoteContentLen is the maximum length of an internal note's content.
	MaxNoteContentLen = 2000

	// MaxRejectReasonLen is the maximum length of a rejection reason.
	MaxRejectReasonLen = 500

	// MaxTitleLen and MaxDescriptionLen bound citizen-entered report text.
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000
)
