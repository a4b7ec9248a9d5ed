package domain

import "time"

// User belongs to at most one team; an empty TeamName means none.
// Users are never deleted by assignment operations, only deactivated.
type User struct {
	UserID    string
	Username  string
	TeamName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(userID, username, teamName string, isActive bool) User {
	now := time.Now()
	return User{
		UserID:    userID,
		Username:  username,
		TeamName:  teamName,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetIsActive updates the activity flag and bumps UpdatedAt.
func (u *User) SetIsActive(isActive bool) {
	u.IsActive = isActive
	u.UpdatedAt = time.Now()
}

// CanBeReviewer reports whether the user is eligible for assignment.
func (u *User) CanBeReviewer() bool {
	return u.IsActive
}
