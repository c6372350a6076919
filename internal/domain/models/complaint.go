// internal/domain/models/complaint.go
package models

import (
	"strings"
	"time"
)

// ComplaintStatus is the forward-only lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

// Statuses lists the lifecycle in order.
var Statuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved}

// Rank is the position of the status in the lifecycle, or -1 if unknown.
func (s ComplaintStatus) Rank() int {
	for i, v := range Statuses {
		if v == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no further transition is possible.
func (s ComplaintStatus) Terminal() bool { return s == StatusResolved }

// ParseComplaintStatus accepts the wire value as well as compact spellings
// such as "in_progress" or "inprogress".
func ParseComplaintStatus(s string) (ComplaintStatus, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(k)
	switch k {
	case "pending":
		return StatusPending, true
	case "inprogress":
		return StatusInProgress, true
	case "resolved":
		return StatusResolved, true
	}
	return "", false
}

// Category is the sanitation issue type.
type Category string

const (
	CategoryGarbage     Category = "Garbage Accumulation"
	CategorySewage      Category = "Sewage Blockage"
	CategoryDrain       Category = "Drain Overflow"
	CategoryRiver       Category = "River Pollution"
	CategoryStrayAnimal Category = "Stray Animal Issue"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryGarbage, CategorySewage, CategoryDrain, CategoryRiver, CategoryStrayAnimal}

// DefaultCategory is used when a submission names none.
const DefaultCategory = CategoryGarbage

// ParseCategory matches a category case-insensitively. Empty input yields
// DefaultCategory.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCategory, true
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Complaint is the record stored in the "complaints" collection. ImageURL holds
// the blob reference on disk and is resolved to a fetchable URL on read.
type Complaint struct {
	ID                  string          `bson:"_id" json:"id"`
	UserID              string          `bson:"userId" json:"userId"`
	ZoneID              string          `bson:"zoneId" json:"zoneId"`
	ZoneName            string          `bson:"zoneName" json:"zoneName"`
	Category            Category        `bson:"category" json:"category"`
	Description         string          `bson:"description" json:"description"`
	ImageURL            string          `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Latitude            *float64        `bson:"latitude" json:"latitude"`
	Longitude           *float64        `bson:"longitude" json:"longitude"`
	Ward                string          `bson:"ward" json:"ward"`
	Status              ComplaintStatus `bson:"status" json:"status"`
	AIVerified          bool            `bson:"aiVerified" json:"aiVerified"`
	AssignedOfficerID   string          `bson:"assignedOfficerId,omitempty" json:"assignedOfficerId,omitempty"`
	AssignedOfficerName string          `bson:"assignedOfficerName,omitempty" json:"assignedOfficerName,omitempty"`
	AssignedAt          *time.Time      `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	CreatedAt           time.Time       `bson:"createdAt" json:"createdAt"`
}

// Assigned reports whether an officer is bound to the complaint.
func (c Complaint) Assigned() bool { return c.AssignedOfficerID != "" }
