package database

import "time"

// Run describes one ingestion whose records are stored as a snapshot
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Lines     int       `json:"lines"`
	Dropped   int       `json:"dropped"`
	Agents    int       `json:"agents"`
	Objects   int       `json:"objects"`
}
