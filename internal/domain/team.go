package domain

import "time"

// Team owns a set of users by name. Deleting a team detaches its users
// instead of deleting them (the schema enforces this with ON DELETE SET NULL).
type Team struct {
	TeamName  string
	Members   []User
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewTeam(teamName string, members []User) Team {
	now := time.Now()
	return Team{
		TeamName:  teamName,
		Members:   members,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActiveMembers returns members eligible for review duty.
func (t *Team) ActiveMembers() []User {
	active := make([]User, 0, len(t.Members))
	for _, m := range t.Members {
		if m.IsActive {
			active = append(active, m)
		}
	}
	return active
}

func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
