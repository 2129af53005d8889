package model

// Client is the top of the ownership chain; projects optionally belong to
// one.
type Client struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	Address     string
	PhoneNumber string
	Email       string
}

// Project groups task groups for a client. A user can see a project when
// they are a member of any user group attached to it.
type Project struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	ClientID    *uint       `gorm:"index"`
	Client      *Client     `gorm:"constraint:OnDelete:CASCADE"`
	UserGroups  []UserGroup `gorm:"many2many:project_user_groups"`
	Audit
}

// Tag labels work within a project; titles are unique per project.
type Tag struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"index:idx_project_tag_title,unique"`
	Description string
	ProjectID   *uint    `gorm:"index:idx_project_tag_title,unique"`
	Project     *Project `gorm:"constraint:OnDelete:CASCADE"`
	Audit
}
