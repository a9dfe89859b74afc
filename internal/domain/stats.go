package domain

type Stats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Booked    int `json:"booked"`
	ThisWeek  int `json:"thisWeek"`
}
