package model

// SessionRecord pairs the identifiers of the currently valid access and refresh
// tokens of one principal.
type SessionRecord struct {
	AccessIdentifier  string `json:"accessIdentifier"`
	RefreshIdentifier string `json:"refreshIdentifier"`
}

type OTPRecord struct {
	OTPCode string `json:"otpCode"`
	UserID  string `json:"userId"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AccessToken struct {
	AccessToken string `json:"accessToken"`
}
