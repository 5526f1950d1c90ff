package core

import (
	"time"
)

type MediaKind int

const (
	MediaImage MediaKind = 1
	MediaVideo MediaKind = 2
)

type Media struct {
	URL          string    `json:"url"`
	CompleteURL  string    `json:"completeUrl,omitempty"`
	Kind         MediaKind `json:"mediaType"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}

func (m Media) IsVideo() bool {
	return m.Kind == MediaVideo
}

// Author is the short user record embedded into posts and comments.
type Author struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	UserName       string `json:"userName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// GeoPoint is a GeoJSON point, coordinates are [lon, lat].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type Post struct {
	ID     string `json:"_id"`
	UserID string `json:"userId"`

	// The API returns the author either nested or as flat fields.
	User           *Author `json:"user,omitempty"`
	UserName       string  `json:"userName,omitempty"`
	Name           string  `json:"name,omitempty"`
	ProfilePicture string  `json:"profilePicture,omitempty"`

	Caption       string    `json:"caption"`
	Hashtags      []string  `json:"hashtags,omitempty"`
	TaggedUserIDs []string  `json:"taggedUserIds,omitempty"`
	Address       string    `json:"address,omitempty"`
	Location      *GeoPoint `json:"location,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`

	Media []Media `json:"media"`

	HideLikes    bool `json:"hideLikes"`
	HideComments bool `json:"hideComments"`
	HideShares   bool `json:"hideShares"`

	IsLiked bool `json:"isLiked"`
	IsSaved bool `json:"isSaved"`

	LikesCount    int `json:"likesCount"`
	CommentsCount int `json:"commentsCount"`
	ViewCount     int `json:"viewCount"`
	ShareCount    int `json:"shareCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Post) Author() Author {
	if p.User != nil {
		return *p.User
	}
	return Author{
		ID:             p.UserID,
		Name:           p.Name,
		UserName:       p.UserName,
		ProfilePicture: p.ProfilePicture,
	}
}

// Coordinates prefers explicit latitude/longitude over the GeoJSON location.
func (p Post) Coordinates() (lat, lon float64, ok bool) {
	if p.Latitude != nil && p.Longitude != nil {
		return *p.Latitude, *p.Longitude, true
	}
	if p.Location != nil {
		return p.Location.Coordinates[1], p.Location.Coordinates[0], true
	}
	return 0, 0, false
}

type Comment struct {
	ID            string   `json:"_id"`
	PostID        string   `json:"postId"`
	UserID        string   `json:"userId"`
	Content       string   `json:"content,omitempty"`
	Hashtags      []string `json:"hashtags,omitempty"`
	TaggedUserIDs []string `json:"taggedUserIds,omitempty"`

	// ParentID is empty for root comments.
	ParentID string `json:"commentId,omitempty"`

	User *Author `json:"user,omitempty"`

	IsLiked       bool `json:"isLiked"`
	LikesCount    int  `json:"likesCount"`
	CommentsCount int  `json:"commentsCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Comment) IsRoot() bool {
	return c.ParentID == ""
}

type SearchUser struct {
	ID             string `json:"_id"`
	UserName       string `json:"userName"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	IsFollower     bool   `json:"isFollower"`
	IsFollowing    bool   `json:"isFollowing"`
}

type RecentSearch struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	SearchBy  string    `json:"searchBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	SearchAt  time.Time `json:"searchAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LocationSuggestion struct {
	DisplayName string  `json:"displayName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type Profile struct {
	ID          string `json:"_id"`
	Phone       string `json:"phone,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`

	Name     string `json:"name"`
	UserName string `json:"userName"`
	Email    string `json:"email,omitempty"`
	Gender   int    `json:"gender,omitempty"`

	PrivateAccount bool    `json:"privateAccount"`
	WalletBalance  float64 `json:"walletBalance,omitempty"`

	Description    string   `json:"description,omitempty"`
	Link           string   `json:"link,omitempty"`
	Address        string   `json:"address,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ReferralCode   string   `json:"referralCode,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Profile) Author() Author {
	return Author{
		ID:             p.ID,
		Name:           p.Name,
		UserName:       p.UserName,
		ProfilePicture: p.ProfilePicture,
	}
}

// ProfileCounts are display values derived by the server.
type ProfileCounts struct {
	Followers int `json:"followerCount"`
	Following int `json:"followingCount"`
	Posts     int `json:"postsCount"`
}

type Page[T any] struct {
	Items  []T  `json:"items"`
	IsNext bool `json:"isNext"`
}
