package core

// PostTypeRegular is the type of posts shown on profile grids.
const PostTypeRegular = 1

type PostQuery struct {
	UserID    string `json:"userId,omitempty"`
	IsSaved   bool   `json:"isSaved,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Skip      int    `json:"skip,omitempty"`
	SortKey   string `json:"sortKey,omitempty"`
	SortOrder int    `json:"sortOrder,omitempty"`
	PostType  int    `json:"postType,omitempty"`
}

type CreatePostRequest struct {
	Caption       string    `json:"caption,omitempty"`
	Hashtags      []string  `json:"hashtags,omitempty"`
	TaggedUserIDs []string  `json:"taggedUserIds,omitempty"`
	Visibility    int       `json:"visibility"`
	PostType      int       `json:"postType,omitempty"`
	HideComments  bool      `json:"hideComments,omitempty"`
	HideLikes     bool      `json:"hideLikes,omitempty"`
	HideShares    bool      `json:"hideShares,omitempty"`
	Address       string    `json:"address,omitempty"`
	Location      *GeoPoint `json:"location,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	RepostID      string    `json:"repostId,omitempty"`
	Media         []Media   `json:"media,omitempty"`
	Audio         string    `json:"audio,omitempty"`
	AudioName     string    `json:"audioName,omitempty"`
}

// PostPatch carries the editable fields of a post. Nil means unchanged.
type PostPatch struct {
	Caption       *string  `json:"caption,omitempty"`
	Hashtags      []string `json:"hashtags,omitempty"`
	TaggedUserIDs []string `json:"taggedUserIds,omitempty"`
	HideLikes     *bool    `json:"hideLikes,omitempty"`
	HideComments  *bool    `json:"hideComments,omitempty"`
	HideShares    *bool    `json:"hideShares,omitempty"`
	Address       *string  `json:"address,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

type CommentDraft struct {
	PostID   string `json:"postId"`
	Content  string `json:"content"`
	ParentID string `json:"commentId,omitempty"`
}

type CommentPatch struct {
	Content string `json:"content"`
}

// ProfileUpdate carries the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name           *string  `json:"name,omitempty"`
	UserName       *string  `json:"userName,omitempty"`
	Description    *string  `json:"description,omitempty"`
	PrivateAccount *bool    `json:"privateAccount,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Link           *string  `json:"link,omitempty"`
	ReferralCode   *string  `json:"referralCode,omitempty"`
	ProfilePicture *string  `json:"profilePicture,omitempty"`
}
