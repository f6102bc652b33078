package dormapi

import "time"

// UserShort is the reporter stub nested in a report, enough to render who
// filed it.
type UserShort struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Report is a maintenance report as the backend returns it, including the
// server-side enrichment fields.
type Report struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status"`
	AdminReply  string `json:"admin_reply,omitempty"`
	Building    string `json:"building,omitempty"`
	Room        string `json:"room,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ReporterID int64      `json:"reporter_id"`
	Reporter   *UserShort `json:"reporter,omitempty"`

	AILabel      string  `json:"ai_label,omitempty"`
	AIConfidence float64 `json:"ai_confidence,omitempty"`
	AIRoom       string  `json:"ai_room,omitempty"`
	AIFloor      int     `json:"ai_floor,omitempty"`
	AITimeText   string  `json:"ai_time_text,omitempty"`
}

// ReportCreate is the client-supplied part of a new report. Title is the
// only required field; the backend fills category, priority, and the
// enrichment fields itself.
type ReportCreate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Building    string `json:"building,omitempty"`
	Room        string `json:"room,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ReportUpdate carries the admin-side patch. Nil fields are left unchanged
// server-side.
type ReportUpdate struct {
	Status     *string `json:"status,omitempty"`
	AdminReply *string `json:"admin_reply,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	Building   *string `json:"building,omitempty"`
	Room       *string `json:"room,omitempty"`
	ImageURL   *string `json:"image_url,omitempty"`
}

// Checkin is a check-in or check-out request.
type Checkin struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Date       string    `json:"date"`
	Time       string    `json:"time,omitempty"`
	Note       string    `json:"note,omitempty"`
	Status     string    `json:"status"`
	AdminReply string    `json:"admin_reply,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	StudentID  int64     `json:"student_id"`
}

// CheckinCreate is a new check-in/check-out request. Type must be
// "checkin" or "checkout"; Date is YYYY-MM-DD, Time is HH:MM when set.
type CheckinCreate struct {
	Type string `json:"type"`
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
	Note string `json:"note,omitempty"`
}

// CheckinUpdate is the admin-side patch for a check-in request.
type CheckinUpdate struct {
	Status     *string `json:"status,omitempty"`
	AdminReply *string `json:"admin_reply,omitempty"`
}

// Upload is the response of the image upload endpoint. URL is relative to
// the API origin and goes into [ReportCreate].ImageURL.
type Upload struct {
	URL string `json:"url"`
}
