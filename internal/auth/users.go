package auth

import "github.com/Novip1906/tasks-http/internal/models"

// demoPasswordHash is the bcrypt hash of "password".
const demoPasswordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

// DefaultUsers is the seed used when no users are configured.
func DefaultUsers() []models.User {
	return []models.User{
		{Id: 1, Username: "admin", PasswordHash: demoPasswordHash},
		{Id: 2, Username: "user", PasswordHash: demoPasswordHash},
	}
}
