package domain

import "time"

type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusBooked    InquiryStatus = "booked"
)

type Inquiry struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email"`
	Travelers    int           `json:"travelers"`
	Destination  string        `json:"destination"`
	TravelDate   *string       `json:"travel_date"`
	TravelerType *string       `json:"traveler_type"`
	Message      string        `json:"message"`
	Status       InquiryStatus `json:"status"`
	Notes        *string       `json:"notes"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Document is the persisted aggregate: every inquiry in append order plus the
// id high-water mark. LastID never decreases, so ids are not reused.
type Document struct {
	Inquiries []Inquiry `json:"inquiries"`
	LastID    int64     `json:"lastId"`
}

func NewDocument() *Document {
	return &Document{Inquiries: make([]Inquiry, 0)}
}

// NextID consumes and returns the next inquiry id.
func (d *Document) NextID() int64 {
	d.LastID++
	return d.LastID
}

func (d *Document) IndexOf(id int64) int {
	for i := range d.Inquiries {
		if d.Inquiries[i].ID == id {
			return i
		}
	}
	return -1
}
