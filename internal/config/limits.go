package config

const (
	// MinSecretKeyLength is the shortest accepted token signing secret (256 bits for HS256)
	MinSecretKeyLength = 32

	// DefaultBcryptCost is used unless BCRYPT_COST overrides it.
	// Tests lower it to bcrypt.MinCost.
	DefaultBcryptCost = 12

	// Username bounds; usernames are lowercase letters, digits, '_' and '-'
	MinUsernameLength = 3
	MaxUsernameLength = 100

	// Password bounds in characters
	MinPasswordLength = 8
	MaxPasswordLength = 100

	// MaxTitleLength fits documents.title VARCHAR(500)
	MaxTitleLength = 500

	// MaxDocTypeLength fits documents.doc_type VARCHAR(50)
	MaxDocTypeLength = 50

	// MaxSourceURLLength fits documents.source_url VARCHAR(2000)
	MaxSourceURLLength = 2000

	// MaxTagNameLength fits tags.name VARCHAR(100)
	MaxTagNameLength = 100

	// MaxRequestBodyBytes bounds JSON request bodies
	MaxRequestBodyBytes = 1 << 20

	// MaxImportBytes bounds multipart import uploads
	MaxImportBytes = 32 << 20
)
