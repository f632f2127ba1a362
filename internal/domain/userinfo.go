package domain

// AvatarImageSource selects where the frontend loads the avatar from.
type AvatarImageSource string

const (
	AvatarSourceGravatar AvatarImageSource = "GRAVATAR"
	AvatarSourcePicture  AvatarImageSource = "PICTURE"
)

// UserInfo is the profile shape served to clients, assembled from the identity
// provider's native fields plus the user_metadata overrides.
type UserInfo struct {
	AvatarImageSource    AvatarImageSource `json:"avatarImageSource"`
	Email                string            `json:"email"`
	FirstName            string            `json:"firstName"`
	GravatarEmailAddress string            `json:"gravatarEmailAddress"`
	LastName             string            `json:"lastName"`
	Nickname             string            `json:"nickname"`
	Picture              string            `json:"picture"`
}

// PatchUserInfo carries the writable profile fields. Nil pointers are left
// untouched by the identity provider.
type PatchUserInfo struct {
	AvatarImageSource    *AvatarImageSource `json:"avatarImageSource"`
	FirstName            *string            `json:"firstName"`
	GravatarEmailAddress *string            `json:"gravatarEmailAddress"`
	LastName             *string            `json:"lastName"`
	Nickname             *string            `json:"nickname"`
	Picture              *string            `json:"picture"`
}
