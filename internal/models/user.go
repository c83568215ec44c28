// ABOUTME: User identity and profile statistics models.
// ABOUTME: One user row owns all routines, splits and sessions.
package models

import "time"

// User is the owner of all personal data.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfileStats holds free-text profile values as entered by the user,
// e.g. Weight "180 lbs" or Height "5'11\"".
type UserProfileStats struct {
	UserID           int64  `json:"user_id" yaml:"-"`
	Height           string `json:"height" yaml:"height"`
	Weight           string `json:"weight" yaml:"weight"`
	BodyFat          string `json:"body_fat" yaml:"body_fat"`
	FavoriteExercise string `json:"favorite_exercise" yaml:"favorite_exercise"`
	MemberSince      string `json:"member_since" yaml:"member_since"`
	Goals            string `json:"goals" yaml:"goals"`
}
