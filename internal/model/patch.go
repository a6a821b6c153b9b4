package model

// Patch is a partial task. Nil fields are left unchanged by Apply, so the same
// type carries both the editor's full record and a one-field change. A date
// pointing at the zero Date clears that date.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Start       *Date   `json:"start,omitempty"`
	End         *Date   `json:"end,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Platform    *string `json:"platform,omitempty"`
	ContentType *string `json:"contentType,omitempty"`
	Campaign    *string `json:"campaign,omitempty"`
	Caption     *string `json:"caption,omitempty"`
	PostURL     *string `json:"postUrl,omitempty"`
	URL         *string `json:"url,omitempty"`
	VideoURL    *string `json:"videourl,omitempty"`
	Comments    *string `json:"comments,omitempty"`
}

// PatchFrom builds a patch that overwrites every editable field with t's.
// Unset dates become clears.
func PatchFrom(t Task) Patch {
	t = t.Clone()
	status := t.Status
	return Patch{
		Title:       &t.Title,
		Start:       dateOrClear(t.Start),
		End:         dateOrClear(t.End),
		Status:      &status,
		Platform:    &t.Platform,
		ContentType: &t.ContentType,
		Campaign:    &t.Campaign,
		Caption:     &t.Caption,
		PostURL:     &t.PostURL,
		URL:         &t.URL,
		VideoURL:    &t.VideoURL,
		Comments:    &t.Comments,
	}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply returns t with every non-nil field of p written over it.
func (p Patch) Apply(t Task) Task {
	out := t.Clone()
	setString(&out.Title, p.Title)
	setString(&out.Platform, p.Platform)
	setString(&out.ContentType, p.ContentType)
	setString(&out.Campaign, p.Campaign)
	setString(&out.Caption, p.Caption)
	setString(&out.PostURL, p.PostURL)
	setString(&out.URL, p.URL)
	setString(&out.VideoURL, p.VideoURL)
	setString(&out.Comments, p.Comments)
	if p.Status != nil {
		out.Status = *p.Status
	}
	setDate(&out.Start, p.Start)
	setDate(&out.End, p.End)
	return out
}

func setDate(dst **Date, v *Date) {
	switch {
	case v == nil:
	case v.IsZero():
		*dst = nil
	default:
		d := *v
		*dst = &d
	}
}

func dateOrClear(d *Date) *Date {
	if d == nil {
		return &Date{}
	}
	return d
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
