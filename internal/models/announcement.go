package models

import "time"

// Announcement is a message addressed to one college or to all of them.
type Announcement struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	TargetCollege string    `json:"targetCollege"` // "all" or a college id
	CreatedAt     time.Time `json:"createdAt"`
}

func (a *Announcement) IsForAll() bool {
	return a.TargetCollege == TargetAllColleges
}

// VisibleTo reports whether the announcement shows on the given college's site.
func (a *Announcement) VisibleTo(collegeID string) bool {
	return a.IsForAll() || a.TargetCollege == collegeID
}
