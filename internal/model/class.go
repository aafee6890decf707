package model

import "time"

// ListingStatus tracks an instructor's class submission through admin review.
type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusDenied   ListingStatus = "denied"
)

// ClassListing is a class an instructor submitted for review.
// It lives in the "instructors" collection: admins approve or deny it and can
// leave feedback for the instructor.
type ClassListing struct {
	ID              string        `json:"_id"`
	ClassName       string        `json:"className"`
	Image           string        `json:"image,omitempty"`
	InstructorName  string        `json:"instructorName,omitempty"`
	InstructorEmail string        `json:"instructorEmail,omitempty"`
	Price           float64       `json:"price"`
	Seat            int           `json:"seat"`
	Enrolled        int           `json:"enrolled"`
	Status          ListingStatus `json:"status"`
	Feedback        string        `json:"feedback,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// ListingChanges holds the instructor-editable fields of a ClassListing.
// Only these three fields are touched by PUT /instructors/{id}.
type ListingChanges struct {
	ClassName string  `json:"className"`
	Price     float64 `json:"price"`
	Seat      int     `json:"seat"`
}

// Class is a published class that students can browse and enroll in.
// Seat counts the seats still available; Enrolled counts paid students.
type Class struct {
	ID              string    `json:"_id"`
	ListingID       string    `json:"listingId,omitempty"`
	ClassName       string    `json:"className"`
	Image           string    `json:"image,omitempty"`
	InstructorName  string    `json:"instructorName,omitempty"`
	InstructorEmail string    `json:"instructorEmail,omitempty"`
	Price           float64   `json:"price"`
	Seat            int       `json:"seat"`
	Enrolled        int       `json:"enrolled"`
	CreatedAt       time.Time `json:"createdAt"`
}
