package core

// Toggle is a boolean flag together with the counter derived from it.
type Toggle struct {
	On    bool
	Count int
}

// Flip is the one transition allowed on a Toggle: exactly one increment or
// decrement per change of On, never below zero.
func (t Toggle) Flip() Toggle {
	if !t.On {
		return Toggle{On: true, Count: t.Count + 1}
	}
	return Toggle{On: false, Count: max(t.Count-1, 0)}
}

// Settle moves t to the server's answer, flipping only when they disagree.
func (t Toggle) Settle(server bool) Toggle {
	if t.On == server {
		return t
	}
	return t.Flip()
}

func (p Post) LikeToggle() Toggle {
	return Toggle{On: p.IsLiked, Count: p.LikesCount}
}

func (p Post) WithLike(t Toggle) Post {
	p.IsLiked = t.On
	p.LikesCount = t.Count
	return p
}

func (c Comment) LikeToggle() Toggle {
	return Toggle{On: c.IsLiked, Count: c.LikesCount}
}

func (c Comment) WithLike(t Toggle) Comment {
	c.IsLiked = t.On
	c.LikesCount = t.Count
	return c
}

// ApplyPatch returns p with the non-nil fields of patch applied.
func (p Post) ApplyPatch(patch PostPatch) Post {
	if patch.Caption != nil {
		p.Caption = *patch.Caption
	}
	if patch.Hashtags != nil {
		p.Hashtags = patch.Hashtags
	}
	if patch.TaggedUserIDs != nil {
		p.TaggedUserIDs = patch.TaggedUserIDs
	}
	if patch.HideLikes != nil {
		p.HideLikes = *patch.HideLikes
	}
	if patch.HideComments != nil {
		p.HideComments = *patch.HideComments
	}
	if patch.HideShares != nil {
		p.HideShares = *patch.HideShares
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Latitude != nil && patch.Longitude != nil {
		p.Latitude = patch.Latitude
		p.Longitude = patch.Longitude
		p.Location = &GeoPoint{Type: "Point", Coordinates: [2]float64{*patch.Longitude, *patch.Latitude}}
	}
	return p
}

// Merge lays the server's echo of an edit over p. Fields the echo lacks keep
// their local values. Identity and media never change.
func (p Post) Merge(echo Echo[Post]) Post {
	merged := echo.Over(p)
	merged.ID = p.ID
	merged.Media = p.Media
	if merged.UserID == "" {
		merged.UserID = p.UserID
	}
	if merged.User == nil && merged.UserName == "" {
		merged.User = p.User
		merged.UserName = p.UserName
		merged.Name = p.Name
		merged.ProfilePicture = p.ProfilePicture
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = p.CreatedAt
	}
	return merged
}

// Complete replaces a locally drafted comment with the one the server
// created, keeping the draft's placement and author when the server omits
// them.
func (c Comment) Complete(server Comment) Comment {
	merged := server
	if merged.ID == "" {
		merged.ID = c.ID
	}
	if merged.PostID == "" {
		merged.PostID = c.PostID
	}
	if merged.UserID == "" {
		merged.UserID = c.UserID
	}
	if merged.ParentID == "" {
		merged.ParentID = c.ParentID
	}
	if merged.User == nil {
		merged.User = c.User
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = c.CreatedAt
	}
	return merged
}

// Merge lays the server's echo of an edit over c. Placement never changes.
func (c Comment) Merge(echo Echo[Comment]) Comment {
	merged := echo.Over(c)
	merged.ID = c.ID
	merged.PostID = c.PostID
	merged.ParentID = c.ParentID
	if merged.User == nil {
		merged.User = c.User
	}
	return merged
}

// Apply returns p with the non-nil fields of u applied.
func (p Profile) Apply(u ProfileUpdate) Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, u.Name)
	set(&p.UserName, u.UserName)
	set(&p.Description, u.Description)
	set(&p.Address, u.Address)
	set(&p.Link, u.Link)
	set(&p.ReferralCode, u.ReferralCode)
	set(&p.ProfilePicture, u.ProfilePicture)
	if u.PrivateAccount != nil {
		p.PrivateAccount = *u.PrivateAccount
	}
	if u.Tags != nil {
		p.Tags = u.Tags
	}
	return p
}

// Merge lays the server's echo of an update over p.
func (p Profile) Merge(echo Echo[Profile]) Profile {
	merged := echo.Over(p)
	if merged.ID == "" {
		merged.ID = p.ID
	}
	return merged
}
