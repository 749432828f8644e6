package simjudge

import "time"

// Config holds configuration for one simulation run.
type Config struct {
	BaseURL      string        // Base URL of the scoring service
	Participants int           // Number of participants to seed
	Judges       int           // Number of simulated judges
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Enable per-request logging
}

// Submission is one generated judge score ready to post.
type Submission struct {
	ParticipantID int64              `json:"participant_id"`
	JudgeName     string             `json:"judge_name"`
	Criteria      map[string]float64 `json:"criteria"`
	Comment       string             `json:"comment"`
}

// Stats holds the counters accumulated over a run.
type Stats struct {
	ParticipantsSeeded int
	Generated          int
	Submitted          int
	Successful         int
	Rejected           int
	Failed             int
	StartTime          time.Time
	Duration           time.Duration
}
