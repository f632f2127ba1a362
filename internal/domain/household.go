package domain

import (
	"time"
)

// Household is a group of users sharing data, owned by the user that created it.
// Names are unique per creator, not globally.
type Household struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_households_name_created_by" json:"name"`
	CreatedBy string    `gorm:"column:created_by;not null;uniqueIndex:idx_households_name_created_by" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	Members        []HouseholdMember     `gorm:"-" json:"members"`
	PendingInvites []HouseholdInvitation `gorm:"-" json:"pending_invites"`
}

func (Household) TableName() string {
	return "households"
}

// HouseholdMember links a user to a household. The creator's row is inserted
// together with the household and can never be removed.
type HouseholdMember struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HouseholdID int64     `gorm:"column:household_id;not null;uniqueIndex:idx_members_household_user" json:"household_id"`
	UserID      string    `gorm:"column:user_id;not null;uniqueIndex:idx_members_household_user" json:"user_id"`
	JoinedAt    time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`

	Household *Household `gorm:"foreignKey:HouseholdID;constraint:OnDelete:CASCADE" json:"-"`
}

func (HouseholdMember) TableName() string {
	return "household_members"
}

// HouseholdInvitation is a pending invitation; accepting it converts it into a
// member row and deletes it. At most one per (household, invited_user).
type HouseholdInvitation struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HouseholdID     int64     `gorm:"column:household_id;not null;uniqueIndex:idx_invitations_household_user" json:"household_id"`
	InvitedUser     string    `gorm:"column:invited_user;not null;uniqueIndex:idx_invitations_household_user" json:"invited_user"`
	InvitedByUserID string    `gorm:"column:invited_by_user_id;not null" json:"invited_by_user_id"`
	InvitedAt       time.Time `gorm:"column:invited_at;autoCreateTime" json:"invited_at"`

	Household *Household `gorm:"foreignKey:HouseholdID;constraint:OnDelete:CASCADE" json:"-"`
}

func (HouseholdInvitation) TableName() string {
	return "household_invitations"
}
