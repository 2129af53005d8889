package model

import "time"

// Gender is a closed enum; display text lives in Label, not in the stored
// value.
type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
	GenderOther
)

var genderLabels = map[Gender]string{
	GenderMale:   "Male",
	GenderFemale: "Female",
	GenderOther:  "Other",
}

func (g Gender) Label() string { return genderLabels[g] }

// User is an account that logs time. TelegramID links the bot surface to the
// account.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	Email       string `gorm:"uniqueIndex"`
	Username    string
	FirstName   string
	LastName    string
	TelegramID  int64 `gorm:"uniqueIndex"`
	PhoneNumber string
	Address     string
	Gender      *Gender
	Position    string
	JoinDate    *time.Time
	DateOfBirth *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName prefers the real name and falls back to the username.
func (u User) DisplayName() string {
	if u.FirstName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserGroup is a named set of users; membership grants access to the
// projects and task groups the group is attached to.
type UserGroup struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	Members     []User `gorm:"many2many:user_group_members"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
